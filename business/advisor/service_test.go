package advisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"phoneGuide/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeAI struct {
	mu sync.Mutex

	recommendations []domain.PhoneRecommendation
	recsErr         error
	// recsGate, when set, blocks GenerateRecommendations until closed.
	recsGate chan struct{}

	similar    []domain.PhoneRecommendation
	similarErr error
	// similarGate, when set, blocks GenerateSimilar until closed.
	similarGate  chan struct{}
	similarCalls []string

	compareText string
	compareErr  error

	imageSrc string
	imageErr error
}

func (f *fakeAI) GenerateRecommendations(ctx context.Context, prefs domain.UserPreferences) ([]domain.PhoneRecommendation, error) {
	if f.recsGate != nil {
		<-f.recsGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recommendations, f.recsErr
}

func (f *fakeAI) GenerateSimilar(ctx context.Context, phone domain.PhoneRecommendation) ([]domain.PhoneRecommendation, error) {
	f.mu.Lock()
	f.similarCalls = append(f.similarCalls, phone.Model)
	gate := f.similarGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.similar, f.similarErr
}

func (f *fakeAI) CompareFeature(ctx context.Context, featureTitle string, values []domain.FeatureValue) (string, error) {
	return f.compareText, f.compareErr
}

func (f *fakeAI) GenerateImage(ctx context.Context, phoneModel string) (string, error) {
	return f.imageSrc, f.imageErr
}

type fakeFavorites struct {
	mu      sync.Mutex
	stored  map[string][]string
	loadErr error
	saveErr error
	saves   int
	// saveGate, when set, blocks the first Save until closed.
	saveGate chan struct{}
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{stored: make(map[string][]string)}
}

func (f *fakeFavorites) Load(ctx context.Context, clientID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]string(nil), f.stored[clientID]...), nil
}

func (f *fakeFavorites) Save(ctx context.Context, clientID string, favorites []string) error {
	f.mu.Lock()
	f.saves++
	first := f.saves == 1
	gate := f.saveGate
	f.mu.Unlock()
	if first && gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored[clientID] = append([]string(nil), favorites...)
	return nil
}

func (f *fakeFavorites) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *fakeFavorites) persisted(clientID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stored[clientID]...)
}

type fakeSearchLog struct {
	mu      sync.Mutex
	entries []SearchLogEntry
}

func (f *fakeSearchLog) Record(ctx context.Context, entry SearchLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeSearchLog) Recent(ctx context.Context, clientID string, limit int) ([]SearchLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SearchLogEntry
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.entries[i].ClientID == clientID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeSearchLog) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// ---- helpers ----

func validPrefs() domain.UserPreferences {
	return domain.UserPreferences{
		Budget:      30000,
		Camera:      domain.PriorityHigh,
		Battery:     domain.PriorityStandard,
		Performance: domain.PerformanceGaming,
		ScreenSize:  domain.ScreenLarge,
		OS:          domain.OSAndroid,
	}
}

func phone(model, brand, os string, score int) domain.PhoneRecommendation {
	return domain.PhoneRecommendation{
		Model:      model,
		Brand:      brand,
		OS:         os,
		MatchScore: score,
	}
}

func newTestService(ai *fakeAI) (*Service, *fakeFavorites, *fakeSearchLog) {
	favorites := newFakeFavorites()
	log := &fakeSearchLog{}
	return NewService(ai, favorites, log, NewSessionStore()), favorites, log
}

func startSession(t *testing.T, svc *Service) *SessionState {
	t.Helper()
	sess, err := svc.StartSession(context.Background(), "")
	require.NoError(t, err)
	return sess
}

func waitForResults(t *testing.T, svc *Service, sessionID string) ResultsView {
	t.Helper()
	var view ResultsView
	require.Eventually(t, func() bool {
		v, err := svc.Results(sessionID)
		if err != nil {
			return false
		}
		view = v
		return !v.IsLoading
	}, 2*time.Second, 5*time.Millisecond)
	return view
}

// ---- tests ----

func TestStartSessionMintsClientID(t *testing.T) {
	svc, _, _ := newTestService(&fakeAI{})

	sess, err := svc.StartSession(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.NotEmpty(t, sess.ClientID)

	other, err := svc.StartSession(context.Background(), "client-42")
	require.NoError(t, err)
	assert.Equal(t, "client-42", other.ClientID)
	assert.NotEqual(t, sess.ID, other.ID)
}

func TestStartSessionLoadsFavorites(t *testing.T) {
	svc, favorites, _ := newTestService(&fakeAI{})
	favorites.stored["client-42"] = []string{"Pixel 9", "iPhone 16"}

	sess, err := svc.StartSession(context.Background(), "client-42")
	require.NoError(t, err)

	view, err := svc.Results(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pixel 9", "iPhone 16"}, view.Favorites)
}

func TestStartSessionFavoritesLoadFailureStartsEmpty(t *testing.T) {
	svc, favorites, _ := newTestService(&fakeAI{})
	favorites.loadErr = errors.New("redis down")

	sess, err := svc.StartSession(context.Background(), "client-42")
	require.NoError(t, err)

	view, err := svc.Results(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Favorites)
}

func TestSubmitSearchRejectsInvalidPreferences(t *testing.T) {
	svc, _, _ := newTestService(&fakeAI{})
	sess := startSession(t, svc)

	prefs := validPrefs()
	prefs.Budget = 4999
	assert.Error(t, svc.SubmitSearch(context.Background(), sess.ID, prefs))

	prefs = validPrefs()
	prefs.Budget = 30001 // off the 2500 step grid
	assert.Error(t, svc.SubmitSearch(context.Background(), sess.ID, prefs))

	prefs = validPrefs()
	prefs.Camera = "maximal"
	assert.Error(t, svc.SubmitSearch(context.Background(), sess.ID, prefs))
}

func TestSubmitSearchUnknownSession(t *testing.T) {
	svc, _, _ := newTestService(&fakeAI{})

	err := svc.SubmitSearch(context.Background(), "nope", validPrefs())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSubmitSearchSortsResultsByMatchScore(t *testing.T) {
	ai := &fakeAI{recommendations: []domain.PhoneRecommendation{
		phone("B", "BrandB", "android", 70),
		phone("A", "BrandA", "android", 95),
		phone("C", "BrandC", "ios", 82),
	}}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))

	view := waitForResults(t, svc, sess.ID)
	require.Len(t, view.Recommendations, 3)
	assert.Equal(t, "A", view.Recommendations[0].Model)
	assert.Equal(t, "C", view.Recommendations[1].Model)
	assert.Equal(t, "B", view.Recommendations[2].Model)
	assert.True(t, view.IsFormSubmitted)
	assert.Empty(t, view.Error)
}

func TestSubmitSearchRejectsWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	ai := &fakeAI{recsGate: gate}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))

	err := svc.SubmitSearch(context.Background(), sess.ID, validPrefs())
	assert.ErrorIs(t, err, domain.ErrSearchInFlight)

	close(gate)
	waitForResults(t, svc, sess.ID)
}

func TestSubmitSearchFailureKeepsOldResults(t *testing.T) {
	ai := &fakeAI{recommendations: []domain.PhoneRecommendation{
		phone("A", "BrandA", "android", 95),
	}}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))
	waitForResults(t, svc, sess.ID)

	ai.mu.Lock()
	ai.recsErr = errors.New("model unavailable")
	ai.mu.Unlock()

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))
	view := waitForResults(t, svc, sess.ID)

	assert.Equal(t, "Tavsiyeler alınırken bir hata oluştu. Lütfen tekrar deneyin.", view.Error)
	require.Len(t, view.Recommendations, 1)
	assert.Equal(t, "A", view.Recommendations[0].Model)
}

func TestSubmitSearchResetsComparisonAndFilters(t *testing.T) {
	ai := &fakeAI{recommendations: []domain.PhoneRecommendation{
		phone("A", "BrandA", "android", 95),
		phone("B", "BrandB", "ios", 80),
	}}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))
	waitForResults(t, svc, sess.ID)

	require.NoError(t, svc.AddToComparison(sess.ID, "A"))
	require.NoError(t, svc.SetFilter(sess.ID, "brand", "BrandA"))

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))
	view := waitForResults(t, svc, sess.ID)

	assert.Empty(t, view.ComparisonList)
	assert.Equal(t, domain.NoFilters(), view.ActiveFilters)
}

func TestSearchIsRecordedInHistory(t *testing.T) {
	ai := &fakeAI{recommendations: []domain.PhoneRecommendation{
		phone("A", "BrandA", "android", 95),
	}}
	svc, _, log := newTestService(ai)
	sess := startSession(t, svc)

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))
	waitForResults(t, svc, sess.ID)

	require.Eventually(t, func() bool { return log.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	entries, err := svc.SearchHistory(context.Background(), sess.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].ResultCount)
	assert.Equal(t, "A", entries[0].TopModel)
	assert.Empty(t, entries[0].ErrorText)
}

func TestFiltersNarrowTheViewNotTheState(t *testing.T) {
	ai := &fakeAI{recommendations: []domain.PhoneRecommendation{
		phone("A", "BrandA", "android", 95),
		phone("B", "BrandB", "ios", 90),
		phone("C", "BrandA", "ios", 85),
	}}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))
	waitForResults(t, svc, sess.ID)

	require.NoError(t, svc.SetFilter(sess.ID, "brand", "BrandA"))
	view, err := svc.Results(sess.ID)
	require.NoError(t, err)
	assert.Len(t, view.Recommendations, 2)
	assert.Equal(t, 3, view.TotalCount)

	require.NoError(t, svc.SetFilter(sess.ID, "os", "ios"))
	view, err = svc.Results(sess.ID)
	require.NoError(t, err)
	require.Len(t, view.Recommendations, 1)
	assert.Equal(t, "C", view.Recommendations[0].Model)

	require.NoError(t, svc.ClearFilters(sess.ID))
	view, err = svc.Results(sess.ID)
	require.NoError(t, err)
	assert.Len(t, view.Recommendations, 3)
}

func TestSetFilterUnknownAxis(t *testing.T) {
	svc, _, _ := newTestService(&fakeAI{})
	sess := startSession(t, svc)

	err := svc.SetFilter(sess.ID, "price", "cheap")
	assert.ErrorIs(t, err, domain.ErrUnknownFilter)
}

func TestComparisonRules(t *testing.T) {
	ai := &fakeAI{recommendations: []domain.PhoneRecommendation{
		phone("A", "BrandA", "android", 95),
		phone("B", "BrandB", "ios", 90),
		phone("C", "BrandC", "ios", 85),
		phone("D", "BrandD", "android", 80),
	}}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))
	waitForResults(t, svc, sess.ID)

	assert.ErrorIs(t, svc.AddToComparison(sess.ID, "Ghost"), domain.ErrPhoneNotFound)

	require.NoError(t, svc.AddToComparison(sess.ID, "A"))
	require.NoError(t, svc.AddToComparison(sess.ID, "B"))

	// duplicate is a silent no-op
	require.NoError(t, svc.AddToComparison(sess.ID, "A"))
	view, err := svc.Results(sess.ID)
	require.NoError(t, err)
	assert.Len(t, view.ComparisonList, 2)

	require.NoError(t, svc.AddToComparison(sess.ID, "C"))
	assert.ErrorIs(t, svc.AddToComparison(sess.ID, "D"), domain.ErrComparisonFull)

	require.NoError(t, svc.RemoveFromComparison(sess.ID, "B"))
	require.NoError(t, svc.AddToComparison(sess.ID, "D"))

	require.NoError(t, svc.ClearComparison(sess.ID))
	view, err = svc.Results(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, view.ComparisonList)
}

func TestToggleFavoriteTwiceIsIdentity(t *testing.T) {
	svc, favorites, _ := newTestService(&fakeAI{})
	sess := startSession(t, svc)

	on, err := svc.ToggleFavorite(context.Background(), sess.ID, "Pixel 9")
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, []string{"Pixel 9"}, favorites.stored[sess.ClientID])

	off, err := svc.ToggleFavorite(context.Background(), sess.ID, "Pixel 9")
	require.NoError(t, err)
	assert.False(t, off)
	assert.Empty(t, favorites.stored[sess.ClientID])
}

func TestConcurrentTogglesPersistTheLatestSet(t *testing.T) {
	gate := make(chan struct{})
	svc, favorites, _ := newTestService(&fakeAI{})
	favorites.saveGate = gate
	sess := startSession(t, svc)

	done := make(chan struct{}, 2)
	go func() {
		_, err := svc.ToggleFavorite(context.Background(), sess.ID, "Pixel 9")
		assert.NoError(t, err)
		done <- struct{}{}
	}()

	// first write reaches the store and stalls there
	require.Eventually(t, func() bool { return favorites.saveCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	go func() {
		_, err := svc.ToggleFavorite(context.Background(), sess.ID, "iPhone 16")
		assert.NoError(t, err)
		done <- struct{}{}
	}()

	// the second toggle updates memory immediately but must queue its write
	// behind the stalled one
	require.Eventually(t, func() bool {
		view, err := svc.Results(sess.ID)
		return err == nil && len(view.Favorites) == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, favorites.saveCount())

	close(gate)
	<-done
	<-done

	view, err := svc.Results(sess.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, view.Favorites, favorites.persisted(sess.ClientID))
	assert.ElementsMatch(t, []string{"Pixel 9", "iPhone 16"}, favorites.persisted(sess.ClientID))
}

func TestToggleFavoriteSurvivesSaveFailure(t *testing.T) {
	svc, favorites, _ := newTestService(&fakeAI{})
	favorites.saveErr = errors.New("redis down")
	sess := startSession(t, svc)

	on, err := svc.ToggleFavorite(context.Background(), sess.ID, "Pixel 9")
	require.NoError(t, err)
	assert.True(t, on)

	view, err := svc.Results(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pixel 9"}, view.Favorites)
}

func TestShowSimilarFlow(t *testing.T) {
	ai := &fakeAI{
		recommendations: []domain.PhoneRecommendation{phone("A", "BrandA", "android", 95)},
		similar: []domain.PhoneRecommendation{
			phone("X", "BrandX", "android", 88),
			phone("Y", "BrandY", "ios", 91),
		},
	}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))
	waitForResults(t, svc, sess.ID)

	assert.ErrorIs(t, svc.ShowSimilar(context.Background(), sess.ID, "Ghost"), domain.ErrPhoneNotFound)

	require.NoError(t, svc.ShowSimilar(context.Background(), sess.ID, "A"))

	var view SimilarView
	require.Eventually(t, func() bool {
		v, err := svc.Similar(sess.ID)
		if err != nil {
			return false
		}
		view = v
		return !v.IsLoading
	}, 2*time.Second, 5*time.Millisecond)

	require.NotNil(t, view.Target)
	assert.Equal(t, "A", view.Target.Model)
	require.Len(t, view.Phones, 2)
	assert.Equal(t, "Y", view.Phones[0].Model) // sorted by similarity score

	require.NoError(t, svc.CloseSimilar(sess.ID))
	view, err := svc.Similar(sess.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Target)
	assert.Empty(t, view.Phones)
	assert.False(t, view.IsLoading)
}

func TestCloseSimilarDiscardsLateResponse(t *testing.T) {
	gate := make(chan struct{})
	ai := &fakeAI{
		recommendations: []domain.PhoneRecommendation{phone("A", "BrandA", "android", 95)},
		similar:         []domain.PhoneRecommendation{phone("X", "BrandX", "android", 88)},
		similarGate:     gate,
	}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))
	waitForResults(t, svc, sess.ID)

	require.NoError(t, svc.ShowSimilar(context.Background(), sess.ID, "A"))
	require.NoError(t, svc.CloseSimilar(sess.ID))
	close(gate) // late response arrives after the modal was closed

	// the stale result must never repopulate the closed modal
	assert.Never(t, func() bool {
		v, err := svc.Similar(sess.ID)
		return err == nil && (v.Target != nil || len(v.Phones) > 0 || v.IsLoading)
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestRetargetSimilarDiscardsSupersededResponse(t *testing.T) {
	gate := make(chan struct{})
	ai := &fakeAI{
		recommendations: []domain.PhoneRecommendation{
			phone("A", "BrandA", "android", 95),
			phone("B", "BrandB", "ios", 90),
		},
		similar:     []domain.PhoneRecommendation{phone("X", "BrandX", "android", 88)},
		similarGate: gate,
	}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	require.NoError(t, svc.SubmitSearch(context.Background(), sess.ID, validPrefs()))
	waitForResults(t, svc, sess.ID)

	require.NoError(t, svc.ShowSimilar(context.Background(), sess.ID, "A"))
	require.NoError(t, svc.ShowSimilar(context.Background(), sess.ID, "B"))
	close(gate)

	var view SimilarView
	require.Eventually(t, func() bool {
		v, err := svc.Similar(sess.ID)
		if err != nil {
			return false
		}
		view = v
		return !v.IsLoading && len(v.Phones) > 0
	}, 2*time.Second, 5*time.Millisecond)

	require.NotNil(t, view.Target)
	assert.Equal(t, "B", view.Target.Model)

	ai.mu.Lock()
	calls := append([]string(nil), ai.similarCalls...)
	ai.mu.Unlock()
	assert.Equal(t, []string{"A", "B"}, calls)
}

func TestCompareFeature(t *testing.T) {
	ai := &fakeAI{compareText: "* Pixel 9 daha iyi. * iPhone 16 daha pahalı."}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	values := []domain.FeatureValue{
		{Model: "Pixel 9", Value: "50MP"},
		{Model: "iPhone 16", Value: "48MP"},
	}

	result, err := svc.CompareFeature(context.Background(), sess.ID, "Kamera", values)
	require.NoError(t, err)
	assert.Equal(t, "Kamera", result.Feature)
	assert.Equal(t, []string{"Pixel 9 daha iyi.", "iPhone 16 daha pahalı."}, result.Bullets)
}

func TestCompareFeatureNeedsTwoPhones(t *testing.T) {
	svc, _, _ := newTestService(&fakeAI{})
	sess := startSession(t, svc)

	_, err := svc.CompareFeature(context.Background(), sess.ID, "Kamera", []domain.FeatureValue{
		{Model: "Pixel 9", Value: "50MP"},
	})
	assert.ErrorIs(t, err, domain.ErrTooFewPhones)
}

func TestCompareFeaturePropagatesFailure(t *testing.T) {
	ai := &fakeAI{compareErr: errors.New("model unavailable")}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	_, err := svc.CompareFeature(context.Background(), sess.ID, "Kamera", []domain.FeatureValue{
		{Model: "Pixel 9", Value: "50MP"},
		{Model: "iPhone 16", Value: "48MP"},
	})
	assert.Error(t, err)
}

func TestPhoneImageFallsBackToPlaceholder(t *testing.T) {
	ai := &fakeAI{imageErr: errors.New("no image data")}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	src, err := svc.PhoneImage(context.Background(), sess.ID, "Galaxy S25 Ultra")
	require.NoError(t, err)
	assert.Equal(t, "https://picsum.photos/seed/GalaxyS25Ultra/600/400", src)
}

func TestPhoneImagePassesThroughGeneratedSource(t *testing.T) {
	ai := &fakeAI{imageSrc: "data:image/png;base64,aGVsbG8="}
	svc, _, _ := newTestService(ai)
	sess := startSession(t, svc)

	src, err := svc.PhoneImage(context.Background(), sess.ID, "Pixel 9")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", src)
}

func TestFallbackImageURL(t *testing.T) {
	assert.Equal(t, "https://picsum.photos/seed/Pixel9Pro/600/400", FallbackImageURL("Pixel 9 Pro"))
	assert.Equal(t, "https://picsum.photos/seed/iPhone16/600/400", FallbackImageURL("  iPhone  16  "))
}

func TestSplitBullets(t *testing.T) {
	bullets := SplitBullets("* birinci madde * ikinci madde\n* üçüncü madde")
	assert.Equal(t, []string{"birinci madde", "ikinci madde", "üçüncü madde"}, bullets)

	assert.Empty(t, SplitBullets(""))
	assert.Equal(t, []string{"düz metin"}, SplitBullets("düz metin"))
}
