package recommend

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/placescout/placescout/internal/config"
	"github.com/placescout/placescout/internal/enrich"
	"github.com/placescout/placescout/internal/model"
	"github.com/placescout/placescout/internal/source"
	"github.com/placescout/placescout/internal/store"
	"github.com/placescout/placescout/pkg/googleplaces"
	"github.com/placescout/placescout/pkg/reddit"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeProvider returns canned candidates or a canned error.
type fakeProvider struct {
	id         model.Source
	candidates []source.Candidate
	err        error
}

func (f *fakeProvider) ID() model.Source { return f.id }

func (f *fakeProvider) Fetch(_ context.Context, _ string, _ *model.Coordinates) ([]source.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

// memStore is an in-memory Store for orchestrator tests.
type memStore struct {
	mu        sync.Mutex
	recs        map[string]*model.RecommendationRecord
	places      map[string]model.NormalizedPlace
	createErr   error
	upsertErrID string
}

func newMemStore() *memStore {
	return &memStore{
		recs:   make(map[string]*model.RecommendationRecord),
		places: make(map[string]model.NormalizedPlace),
	}
}

func (m *memStore) CreateRecommendation(_ context.Context, rec *model.RecommendationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	cp := *rec
	m.recs[rec.ID] = &cp
	return nil
}

func (m *memStore) GetRecommendation(_ context.Context, id string) (*model.RecommendationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) ListRecommendations(_ context.Context, _ store.RecommendationFilter) ([]model.RecommendationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RecommendationRecord, 0, len(m.recs))
	for _, rec := range m.recs {
		out = append(out, *rec)
	}
	return out, nil
}

func (m *memStore) SetFeedback(_ context.Context, id string, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return store.ErrNotFound
	}
	if rec.Feedback != nil {
		return store.ErrFeedbackSet
	}
	rec.Feedback = &rating
	return nil
}

func (m *memStore) UpsertPlace(_ context.Context, place model.NormalizedPlace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErrID != "" && place.ID == m.upsertErrID {
		return eris.New("upsert failed")
	}
	m.places[place.ID] = place
	return nil
}

func (m *memStore) GetPlace(_ context.Context, id string) (*model.NormalizedPlace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	place, ok := m.places[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &place, nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

func googleCandidate(id, name, primaryType string, rating float64) source.Candidate {
	return source.Candidate{
		Source: model.SourceGoogleMaps,
		GooglePlace: &googleplaces.Place{
			ID:          id,
			DisplayName: googleplaces.DisplayName{Text: name},
			PrimaryType: primaryType,
			Rating:      rating,
		},
	}
}

func redditCandidate(id, title, body string) source.Candidate {
	return source.Candidate{
		Source: model.SourceReddit,
		RedditPost: &reddit.Post{
			ID:       id,
			Title:    title,
			SelfText: body,
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Recommend: config.RecommendConfig{
			DefaultLimit:        5,
			ProviderTimeoutSecs: 5,
			EnrichTimeoutSecs:   5,
		},
	}
}

func newTestService(st store.Store, providers ...source.Provider) *Service {
	backend := enrich.NewBackend(config.AIConfig{Backend: "custom"}, nil, nil)
	return New(testConfig(), providers, st, enrich.New(backend, 0))
}

func TestRecommend_FullPipeline(t *testing.T) {
	google := &fakeProvider{
		id: model.SourceGoogleMaps,
		candidates: []source.Candidate{
			googleCandidate("g1", "Blue Tokai Coffee", "coffee_shop", 4.6),
			googleCandidate("g2", "Cubbon Park", "park", 4.7),
		},
	}
	redditP := &fakeProvider{
		id: model.SourceReddit,
		candidates: []source.Candidate{
			redditCandidate("r1", "Third Wave Coffee: worth the hype?", "Great coffee shop, I recommend it"),
		},
	}

	st := newMemStore()
	svc := newTestService(st, google, redditP)

	result, err := svc.Recommend(context.Background(), model.RecommendRequest{
		Query: "chill coffee shop to work from",
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.ID)
	assert.Equal(t, "chill coffee shop to work from", result.Query)
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.AdditionalTips)
	assert.Equal(t, []string{"google_maps", "reddit"}, result.SourcesUsed)

	// Ranks are dense from 1 and scores never increase.
	require.NotEmpty(t, result.Places)
	for i, p := range result.Places {
		assert.Equal(t, i+1, p.Rank)
		if i > 0 {
			assert.LessOrEqual(t, p.Score, result.Places[i-1].Score)
		}
	}

	// The audit record landed in the store.
	rec, err := st.GetRecommendation(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Query, rec.Query)
	assert.Len(t, rec.Places, len(result.Places))
	assert.Equal(t, result.Summary, rec.Narrative)

	// Ranked places were promoted.
	_, err = st.GetPlace(context.Background(), "google_maps:g1")
	assert.NoError(t, err)
}

func TestRecommend_ValidationFailure(t *testing.T) {
	svc := newTestService(newMemStore())

	tests := []struct {
		name string
		req  model.RecommendRequest
	}{
		{name: "empty query", req: model.RecommendRequest{Query: "   "}},
		{name: "bad coordinates", req: model.RecommendRequest{Query: "tacos", Location: &model.Coordinates{Latitude: 95}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Recommend(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestRecommend_AllProvidersFail(t *testing.T) {
	svc := newTestService(newMemStore(),
		&fakeProvider{id: model.SourceGoogleMaps, err: eris.New("api quota exhausted")},
		&fakeProvider{id: model.SourceReddit, err: eris.New("rate limited")},
	)

	_, err := svc.Recommend(context.Background(), model.RecommendRequest{Query: "sushi"})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestRecommend_PartialProviderFailure(t *testing.T) {
	google := &fakeProvider{
		id: model.SourceGoogleMaps,
		candidates: []source.Candidate{
			googleCandidate("g1", "Uchi", "restaurant", 4.8),
		},
	}
	redditP := &fakeProvider{id: model.SourceReddit, err: eris.New("rate limited")}

	svc := newTestService(newMemStore(), google, redditP)

	result, err := svc.Recommend(context.Background(), model.RecommendRequest{Query: "sushi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"google_maps"}, result.SourcesUsed)
	require.Len(t, result.Places, 1)
	assert.Equal(t, "Uchi", result.Places[0].Name)
}

func TestRecommend_NoExtractableCandidates(t *testing.T) {
	// The provider answers, but nothing survives normalization.
	redditP := &fakeProvider{
		id: model.SourceReddit,
		candidates: []source.Candidate{
			redditCandidate("r1", "looking for somewhere to eat???", "no idea where"),
		},
	}

	svc := newTestService(newMemStore(), redditP)

	_, err := svc.Recommend(context.Background(), model.RecommendRequest{Query: "anywhere"})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestRecommend_EnrichmentDisabledStillAnswers(t *testing.T) {
	google := &fakeProvider{
		id: model.SourceGoogleMaps,
		candidates: []source.Candidate{
			googleCandidate("g1", "Radio Coffee", "coffee_shop", 4.5),
		},
	}

	// Unknown backend name disables enrichment; the deterministic
	// fallback must still produce a full response.
	svc := New(testConfig(), []source.Provider{google}, newMemStore(),
		enrich.New(enrich.NewBackend(config.AIConfig{Backend: "nope"}, nil, nil), 0))

	result, err := svc.Recommend(context.Background(), model.RecommendRequest{Query: "coffee"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.AdditionalTips)
	require.Len(t, result.Places, 1)
	assert.Equal(t, "Radio Coffee", result.Places[0].Name)
}

func TestRecommend_PersistenceFailure(t *testing.T) {
	st := newMemStore()
	st.createErr = eris.New("disk full")

	google := &fakeProvider{
		id: model.SourceGoogleMaps,
		candidates: []source.Candidate{
			googleCandidate("g1", "Radio Coffee", "coffee_shop", 4.5),
		},
	}
	svc := newTestService(st, google)

	_, err := svc.Recommend(context.Background(), model.RecommendRequest{Query: "coffee"})
	assert.ErrorIs(t, err, ErrPersist)
}

func TestRecommend_PlacePromotionContinuesOnError(t *testing.T) {
	google := &fakeProvider{
		id: model.SourceGoogleMaps,
		candidates: []source.Candidate{
			googleCandidate("g1", "Blue Tokai Coffee", "coffee_shop", 4.6),
			googleCandidate("g2", "Cubbon Park", "park", 4.7),
		},
	}

	st := newMemStore()
	st.upsertErrID = "google_maps:g1"
	svc := newTestService(st, google)

	result, err := svc.Recommend(context.Background(), model.RecommendRequest{Query: "coffee"})
	require.NoError(t, err)
	require.Len(t, result.Places, 2)

	// The failed place is skipped, the rest are still promoted.
	_, err = st.GetPlace(context.Background(), "google_maps:g1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetPlace(context.Background(), "google_maps:g2")
	assert.NoError(t, err)
}

func TestRecommend_LimitApplied(t *testing.T) {
	candidates := []source.Candidate{
		googleCandidate("g1", "Spot One", "restaurant", 4.1),
		googleCandidate("g2", "Spot Two", "restaurant", 4.2),
		googleCandidate("g3", "Spot Three", "restaurant", 4.3),
		googleCandidate("g4", "Spot Four", "restaurant", 4.4),
	}
	svc := newTestService(newMemStore(), &fakeProvider{id: model.SourceGoogleMaps, candidates: candidates})

	result, err := svc.Recommend(context.Background(), model.RecommendRequest{Query: "dinner", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Places, 2)
}

func TestRecommend_Deterministic(t *testing.T) {
	candidates := []source.Candidate{
		googleCandidate("g1", "Spot One", "restaurant", 4.1),
		googleCandidate("g2", "Spot Two", "restaurant", 4.2),
	}

	first, err := newTestService(newMemStore(), &fakeProvider{id: model.SourceGoogleMaps, candidates: candidates}).
		Recommend(context.Background(), model.RecommendRequest{Query: "dinner"})
	require.NoError(t, err)
	second, err := newTestService(newMemStore(), &fakeProvider{id: model.SourceGoogleMaps, candidates: candidates}).
		Recommend(context.Background(), model.RecommendRequest{Query: "dinner"})
	require.NoError(t, err)

	assert.Equal(t, first.Places, second.Places)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.SourcesUsed, second.SourcesUsed)
}

func TestRecommend_DistanceFilter(t *testing.T) {
	austin := googleCandidate("g1", "Radio Coffee", "coffee_shop", 4.5)
	austin.GooglePlace.Location = googleplaces.LatLng{Latitude: 30.2672, Longitude: -97.7431}
	dallas := googleCandidate("g2", "White Rock Coffee", "coffee_shop", 4.4)
	dallas.GooglePlace.Location = googleplaces.LatLng{Latitude: 32.7767, Longitude: -96.797}

	cfg := testConfig()
	cfg.Recommend.MaxDistanceKM = 25
	backend := enrich.NewBackend(config.AIConfig{Backend: "custom"}, nil, nil)
	svc := New(cfg, []source.Provider{
		&fakeProvider{id: model.SourceGoogleMaps, candidates: []source.Candidate{austin, dallas}},
	}, newMemStore(), enrich.New(backend, 0))

	result, err := svc.Recommend(context.Background(), model.RecommendRequest{
		Query:    "coffee",
		Location: &model.Coordinates{Latitude: 30.2672, Longitude: -97.7431},
	})
	require.NoError(t, err)
	require.Len(t, result.Places, 1)
	assert.Equal(t, "Radio Coffee", result.Places[0].Name)
}

func TestSubmitFeedback(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, &fakeProvider{
		id:         model.SourceGoogleMaps,
		candidates: []source.Candidate{googleCandidate("g1", "Uchi", "restaurant", 4.8)},
	})

	result, err := svc.Recommend(context.Background(), model.RecommendRequest{Query: "sushi"})
	require.NoError(t, err)

	require.NoError(t, svc.SubmitFeedback(context.Background(), result.ID, 5))
	assert.ErrorIs(t, svc.SubmitFeedback(context.Background(), result.ID, 1), store.ErrFeedbackSet)
	assert.ErrorIs(t, svc.SubmitFeedback(context.Background(), result.ID, 9), ErrInvalidRequest)
	assert.ErrorIs(t, svc.SubmitFeedback(context.Background(), "missing", 3), store.ErrNotFound)
}

func TestBuildInsights(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, &fakeProvider{
		id: model.SourceGoogleMaps,
		candidates: []source.Candidate{
			googleCandidate("g1", "Uchi", "restaurant", 4.8),
			googleCandidate("g2", "Radio Coffee", "coffee_shop", 4.5),
		},
	})

	result, err := svc.Recommend(context.Background(), model.RecommendRequest{Query: "dinner then coffee"})
	require.NoError(t, err)
	require.NoError(t, svc.SubmitFeedback(context.Background(), result.ID, 4))

	ins, err := svc.BuildInsights(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, ins.TotalRecommendations)
	assert.Equal(t, 1, ins.RatedCount)
	assert.InDelta(t, 4.0, ins.AverageFeedback, 1e-9)
	require.NotEmpty(t, ins.TopCategories)
}
