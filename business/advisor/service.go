package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"phoneGuide/domain"
	"phoneGuide/pkg/logger"
	"phoneGuide/pkg/metrics"

	"github.com/google/uuid"
)

// Fixed localized banner shown when a search fails. The previous result list
// stays in memory; only this message is surfaced.
const msgSearchError = "Tavsiyeler alınırken bir hata oluştu. Lütfen tekrar deneyin."

// fallbackImageBase serves the deterministic placeholder keyed by a seed
// derived from the model name, so the same model always gets the same picture.
const fallbackImageBase = "https://picsum.photos/seed/%s/600/400"

// ---- Repository interfaces ----

// AIClient is the narrow façade over the generative backend. Implementations
// are swappable; tests use fakes.
type AIClient interface {
	GenerateRecommendations(ctx context.Context, prefs domain.UserPreferences) ([]domain.PhoneRecommendation, error)
	GenerateSimilar(ctx context.Context, phone domain.PhoneRecommendation) ([]domain.PhoneRecommendation, error)
	CompareFeature(ctx context.Context, featureTitle string, values []domain.FeatureValue) (string, error)
	GenerateImage(ctx context.Context, phoneModel string) (string, error)
}

type FavoritesRepository interface {
	Load(ctx context.Context, clientID string) ([]string, error)
	Save(ctx context.Context, clientID string, favorites []string) error
}

// SearchLogEntry is one audited search outcome.
type SearchLogEntry struct {
	SessionID   string
	ClientID    string
	Preferences domain.UserPreferences
	ResultCount int
	TopModel    string
	ErrorText   string
	CreatedAt   time.Time
}

type SearchLog interface {
	Record(ctx context.Context, entry SearchLogEntry) error
	Recent(ctx context.Context, clientID string, limit int) ([]SearchLogEntry, error)
}

// ---- Views ----

// ResultsView is the read model for the results surface. Recommendations is
// the filtered projection; the full list is never exposed pre-sort or stored
// filtered.
type ResultsView struct {
	Recommendations []domain.PhoneRecommendation `json:"recommendations"`
	TotalCount      int                          `json:"totalCount"`
	IsLoading       bool                         `json:"isLoading"`
	Error           string                       `json:"error,omitempty"`
	IsFormSubmitted bool                         `json:"isFormSubmitted"`
	ActiveFilters   domain.Filters               `json:"activeFilters"`
	ComparisonList  []domain.PhoneRecommendation `json:"comparisonList"`
	Favorites       []string                     `json:"favorites"`
}

// SimilarView is the read model for the similar-phones modal.
type SimilarView struct {
	Target    *domain.PhoneRecommendation  `json:"target"`
	Phones    []domain.PhoneRecommendation `json:"phones"`
	IsLoading bool                         `json:"isLoading"`
}

// FeatureComparison is the result of one deep feature compare.
type FeatureComparison struct {
	Feature string   `json:"feature"`
	Bullets []string `json:"bullets"`
}

// ---- Usecase / Service ----

type Service struct {
	ai        AIClient
	favorites FavoritesRepository
	searchLog SearchLog
	store     *SessionStore
}

func NewService(ai AIClient, favorites FavoritesRepository, searchLog SearchLog, store *SessionStore) *Service {
	return &Service{
		ai:        ai,
		favorites: favorites,
		searchLog: searchLog,
		store:     store,
	}
}

// StartSession creates a session for clientID, minting a fresh client identity
// when none is presented. Favorites are loaded once here; a load failure
// degrades to an empty set and is only logged.
func (s *Service) StartSession(ctx context.Context, clientID string) (*SessionState, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if clientID == "" {
		clientID = uuid.NewString()
	}

	favorites, err := s.favorites.Load(ctx, clientID)
	if err != nil {
		logger.Error("Failed to load favorites, starting empty", err)
		favorites = []string{}
	}

	return s.store.Create(clientID, favorites), nil
}

// SubmitSearch starts a recommendation search. It clears the error banner and
// the comparison list, resets filters, and dispatches the remote call without
// blocking. A search already in flight for this session is rejected; the
// previous result list is replaced only when the new one arrives intact.
func (s *Service) SubmitSearch(ctx context.Context, sessionID string, prefs domain.UserPreferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.IsLoading {
		sess.mu.Unlock()
		return domain.ErrSearchInFlight
	}
	sess.IsLoading = true
	sess.Error = ""
	sess.IsFormSubmitted = true
	sess.ComparisonList = nil
	sess.ActiveFilters = domain.NoFilters()
	sess.searchEpoch++
	epoch := sess.searchEpoch
	sess.mu.Unlock()

	metrics.SearchTotal.Inc()

	go s.runSearch(sess, epoch, prefs)

	return nil
}

// runSearch performs the remote call and applies the outcome, unless the
// session's search context has moved on since dispatch.
func (s *Service) runSearch(sess *SessionState, epoch uint64, prefs domain.UserPreferences) {
	start := time.Now()
	recs, err := s.ai.GenerateRecommendations(context.Background(), prefs)
	metrics.SearchLatency.Observe(time.Since(start).Seconds())

	entry := SearchLogEntry{
		SessionID:   sess.ID,
		ClientID:    sess.ClientID,
		Preferences: prefs,
		CreatedAt:   time.Now(),
	}

	sess.mu.Lock()
	if sess.searchEpoch != epoch {
		sess.mu.Unlock()
		return
	}
	if err != nil {
		logger.Error("Recommendation search failed", err)
		metrics.SearchFailures.Inc()
		sess.Error = msgSearchError
		entry.ErrorText = err.Error()
	} else {
		domain.SortByMatchScore(recs)
		sess.Recommendations = recs
		sess.Error = ""
		entry.ResultCount = len(recs)
		if len(recs) > 0 {
			entry.TopModel = recs[0].Model
		}
	}
	sess.IsLoading = false
	sess.mu.Unlock()

	s.recordSearch(entry)
}

// recordSearch appends to the audit log. Failures never affect the search.
func (s *Service) recordSearch(entry SearchLogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.searchLog.Record(ctx, entry); err != nil {
		logger.Error("Failed to record search history", err)
	}
}

// Results returns the filtered projection of the current session state.
func (s *Service) Results(sessionID string) (ResultsView, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return ResultsView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return ResultsView{
		Recommendations: FilterRecommendations(sess.Recommendations, sess.ActiveFilters),
		TotalCount:      len(sess.Recommendations),
		IsLoading:       sess.IsLoading,
		Error:           sess.Error,
		IsFormSubmitted: sess.IsFormSubmitted,
		ActiveFilters:   sess.ActiveFilters,
		ComparisonList:  append([]domain.PhoneRecommendation(nil), sess.ComparisonList...),
		Favorites:       append([]string(nil), sess.Favorites...),
	}, nil
}

// SetFilter replaces one axis of the active filter pair.
func (s *Service) SetFilter(sessionID, axis, value string) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch axis {
	case "brand":
		sess.ActiveFilters.Brand = value
	case "os":
		sess.ActiveFilters.OS = value
	default:
		return domain.ErrUnknownFilter
	}
	return nil
}

// ClearFilters resets both axes to the "all" sentinel.
func (s *Service) ClearFilters(sessionID string) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.ActiveFilters = domain.NoFilters()
	sess.mu.Unlock()
	return nil
}

// AddToComparison adds a phone from the current results (or the open similar
// list) to the comparison selection. A full selection is rejected with
// ErrComparisonFull; a duplicate model is a silent no-op.
func (s *Service) AddToComparison(sessionID, model string) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	phone, ok := findPhone(model, sess.Recommendations, sess.SimilarPhones)
	if !ok {
		return domain.ErrPhoneNotFound
	}

	if len(sess.ComparisonList) >= 3 {
		return domain.ErrComparisonFull
	}
	for _, p := range sess.ComparisonList {
		if p.Model == model {
			return nil
		}
	}

	sess.ComparisonList = append(sess.ComparisonList, phone)
	return nil
}

// RemoveFromComparison drops one model from the selection.
func (s *Service) RemoveFromComparison(sessionID, model string) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	kept := sess.ComparisonList[:0]
	for _, p := range sess.ComparisonList {
		if p.Model != model {
			kept = append(kept, p)
		}
	}
	sess.ComparisonList = kept
	return nil
}

// ClearComparison empties the selection.
func (s *Service) ClearComparison(sessionID string) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.ComparisonList = nil
	sess.mu.Unlock()
	return nil
}

// ToggleFavorite flips membership of model in the favorites set and rewrites
// the persisted copy. A persistence failure keeps the in-memory toggle and is
// only logged, matching the storage contract.
func (s *Service) ToggleFavorite(ctx context.Context, sessionID, model string) (bool, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return false, err
	}

	sess.mu.Lock()
	isFavorite := false
	kept := sess.Favorites[:0]
	for _, m := range sess.Favorites {
		if m == model {
			isFavorite = true
			continue
		}
		kept = append(kept, m)
	}
	if !isFavorite {
		kept = append(kept, model)
	}
	sess.Favorites = kept
	sess.mu.Unlock()

	// Writes are serialized per session and snapshot the set at write time;
	// concurrent toggles cannot land their writes out of order.
	sess.saveMu.Lock()
	sess.mu.Lock()
	snapshot := append([]string(nil), sess.Favorites...)
	clientID := sess.ClientID
	sess.mu.Unlock()
	err = s.favorites.Save(ctx, clientID, snapshot)
	sess.saveMu.Unlock()
	if err != nil {
		logger.Error("Failed to save favorites", err)
	}

	return !isFavorite, nil
}

// ShowSimilar targets the similar-phones modal at a phone and dispatches the
// lookup. Retargeting while a lookup is in flight is allowed; the epoch bump
// makes the superseded response fall on the floor when it arrives.
func (s *Service) ShowSimilar(ctx context.Context, sessionID, model string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	phone, ok := findPhone(model, sess.Recommendations, sess.SimilarPhones)
	if !ok {
		sess.mu.Unlock()
		return domain.ErrPhoneNotFound
	}

	sess.SimilarTarget = &phone
	sess.SimilarPhones = nil
	sess.IsSimilarLoading = true
	sess.similarEpoch++
	epoch := sess.similarEpoch
	sess.mu.Unlock()

	go s.runSimilar(sess, epoch, phone)

	return nil
}

// runSimilar performs the lookup and applies the result unless the modal was
// closed or retargeted in the meantime.
func (s *Service) runSimilar(sess *SessionState, epoch uint64, phone domain.PhoneRecommendation) {
	start := time.Now()
	recs, err := s.ai.GenerateSimilar(context.Background(), phone)
	metrics.SimilarLatency.Observe(time.Since(start).Seconds())

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.similarEpoch != epoch {
		return
	}
	if err != nil {
		logger.Error("Similar phones lookup failed", err)
		// modal stays open with an empty list; no banner for this flow
	} else {
		domain.SortByMatchScore(recs)
		sess.SimilarPhones = recs
	}
	sess.IsSimilarLoading = false
}

// CloseSimilar resets the modal unconditionally. Any in-flight lookup result
// arriving afterwards is discarded.
func (s *Service) CloseSimilar(sessionID string) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.SimilarTarget = nil
	sess.SimilarPhones = nil
	sess.IsSimilarLoading = false
	sess.similarEpoch++
	sess.mu.Unlock()
	return nil
}

// Similar returns the modal's current read model.
func (s *Service) Similar(sessionID string) (SimilarView, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return SimilarView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var target *domain.PhoneRecommendation
	if sess.SimilarTarget != nil {
		t := *sess.SimilarTarget
		target = &t
	}

	return SimilarView{
		Target:    target,
		Phones:    append([]domain.PhoneRecommendation(nil), sess.SimilarPhones...),
		IsLoading: sess.IsSimilarLoading,
	}, nil
}

// CompareFeature runs the deep comparison of one spec row across at least two
// phones. The call is synchronous; on failure nothing is retained.
func (s *Service) CompareFeature(ctx context.Context, sessionID, featureTitle string, values []domain.FeatureValue) (FeatureComparison, error) {
	if _, err := s.store.Get(sessionID); err != nil {
		return FeatureComparison{}, err
	}
	if len(values) < 2 {
		return FeatureComparison{}, domain.ErrTooFewPhones
	}

	text, err := s.ai.CompareFeature(ctx, featureTitle, values)
	if err != nil {
		return FeatureComparison{}, err
	}

	return FeatureComparison{
		Feature: featureTitle,
		Bullets: SplitBullets(text),
	}, nil
}

// PhoneImage returns a displayable image source for the model. Failures are
// fully absorbed: the caller always gets a usable URL, falling back to the
// seeded placeholder.
func (s *Service) PhoneImage(ctx context.Context, sessionID, model string) (string, error) {
	if _, err := s.store.Get(sessionID); err != nil {
		return "", err
	}

	src, err := s.ai.GenerateImage(ctx, model)
	if err != nil {
		logger.Error("Image generation failed, using placeholder", "model", model, "error", err)
		metrics.ImageFallbacks.Inc()
		return FallbackImageURL(model), nil
	}

	return src, nil
}

// SearchHistory lists the client's recent searches, newest first.
func (s *Service) SearchHistory(ctx context.Context, sessionID string, limit int) ([]SearchLogEntry, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	return s.searchLog.Recent(ctx, sess.ClientID, limit)
}

// FallbackImageURL derives the deterministic placeholder address from the
// whitespace-stripped model name.
func FallbackImageURL(model string) string {
	seed := strings.Join(strings.Fields(model), "")
	return fmt.Sprintf(fallbackImageBase, seed)
}

// SplitBullets turns the model's '* '-delimited comparison text into a list,
// dropping empty fragments.
func SplitBullets(text string) []string {
	parts := strings.Split(text, "* ")
	bullets := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			bullets = append(bullets, p)
		}
	}
	return bullets
}

// findPhone looks a model up across the given result lists.
func findPhone(model string, lists ...[]domain.PhoneRecommendation) (domain.PhoneRecommendation, bool) {
	for _, list := range lists {
		for _, p := range list {
			if p.Model == model {
				return p, true
			}
		}
	}
	return domain.PhoneRecommendation{}, false
}
