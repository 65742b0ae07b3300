package advisor

import (
	"sort"
	"sync"
	"time"

	"phoneGuide/domain"

	"github.com/google/uuid"
)

const maxSessions = 10000

// SessionState is the canonical mutable state behind one client surface: the
// current result list, loading/error flags, active filters, comparison
// selection, favorites and the similar-phones modal. All mutation goes through
// the service while holding mu, so each session behaves like a single logical
// event thread.
type SessionState struct {
	ID       string
	ClientID string

	mu sync.Mutex

	Recommendations []domain.PhoneRecommendation
	IsLoading       bool
	Error           string
	IsFormSubmitted bool

	ComparisonList []domain.PhoneRecommendation
	Favorites      []string
	ActiveFilters  domain.Filters

	SimilarTarget    *domain.PhoneRecommendation
	SimilarPhones    []domain.PhoneRecommendation
	IsSimilarLoading bool

	// Epochs captured at dispatch time by async operations and compared on
	// completion; a mismatch means the originating context is gone and the
	// result is discarded.
	searchEpoch  uint64
	similarEpoch uint64

	// saveMu serializes favorites persistence for this session. Snapshots are
	// taken inside the critical section, so the last write to land always
	// carries the latest membership.
	saveMu sync.Mutex

	lastTouched time.Time
}

// SessionStore keeps live sessions in process memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*SessionState),
	}
}

// Create registers a new session for a client with its preloaded favorites.
func (st *SessionStore) Create(clientID string, favorites []string) *SessionState {
	s := &SessionState{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		Favorites:     favorites,
		ActiveFilters: domain.NoFilters(),
		lastTouched:   time.Now(),
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	capSessions(st.sessions)
	st.mu.Unlock()

	return s
}

// Get returns the session and refreshes its idle timer.
func (st *SessionStore) Get(sessionID string) (*SessionState, error) {
	st.mu.RLock()
	s, ok := st.sessions[sessionID]
	st.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	s.mu.Lock()
	s.lastTouched = time.Now()
	s.mu.Unlock()

	return s, nil
}

// EvictIdle drops sessions untouched for longer than maxIdle and returns how
// many were removed.
func (st *SessionStore) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	st.mu.Lock()
	defer st.mu.Unlock()

	evicted := 0
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := s.lastTouched.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(st.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartEviction runs EvictIdle on a ticker until stop is closed.
func (st *SessionStore) StartEviction(interval, maxIdle time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				st.EvictIdle(maxIdle)
			case <-stop:
				return
			}
		}
	}()
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// capSessions bounds the map, dropping least recently touched sessions first.
// Caller holds st.mu.
func capSessions(sessions map[string]*SessionState) {
	if len(sessions) <= maxSessions {
		return
	}

	type sessionInfo struct {
		id          string
		lastTouched time.Time
	}

	infos := make([]sessionInfo, 0, len(sessions))
	for id, s := range sessions {
		s.mu.Lock()
		infos = append(infos, sessionInfo{id: id, lastTouched: s.lastTouched})
		s.mu.Unlock()
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].lastTouched.Before(infos[j].lastTouched)
	})

	toDrop := len(sessions) - maxSessions
	for i := 0; i < toDrop && i < len(infos); i++ {
		delete(sessions, infos[i].id)
	}
}
