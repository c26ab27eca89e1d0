package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/placescout/placescout/internal/config"
	"github.com/placescout/placescout/internal/enrich"
	"github.com/placescout/placescout/internal/model"
	"github.com/placescout/placescout/internal/recommend"
	"github.com/placescout/placescout/internal/source"
	"github.com/placescout/placescout/internal/store"
	"github.com/placescout/placescout/pkg/googleplaces"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type stubProvider struct {
	id         model.Source
	candidates []source.Candidate
}

func (p *stubProvider) ID() model.Source { return p.id }

func (p *stubProvider) Fetch(context.Context, string, *model.Coordinates) ([]source.Candidate, error) {
	return p.candidates, nil
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	provider := &stubProvider{
		id: model.SourceGoogleMaps,
		candidates: []source.Candidate{
			{
				Source: model.SourceGoogleMaps,
				GooglePlace: &googleplaces.Place{
					ID:          "g1",
					DisplayName: googleplaces.DisplayName{Text: "Radio Coffee"},
					PrimaryType: "coffee_shop",
					Rating:      4.5,
				},
			},
		},
	}

	cfg := &config.Config{
		Recommend: config.RecommendConfig{DefaultLimit: 5, ProviderTimeoutSecs: 5, EnrichTimeoutSecs: 5},
	}
	backend := enrich.NewBackend(config.AIConfig{Backend: "custom"}, nil, nil)
	svc := recommend.New(cfg, []source.Provider{provider}, st, enrich.New(backend, 0))

	return New(svc, 0).routes()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	rr := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestQueryEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rr := postJSON(t, h, "/api/v1/recommendations/query", map[string]any{
		"query": "chill coffee shop to work from",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result model.RecommendResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.NotEmpty(t, result.ID)
	assert.NotEmpty(t, result.Summary)
	require.Len(t, result.Places, 1)
	assert.Equal(t, "Radio Coffee", result.Places[0].Name)
	assert.Equal(t, 1, result.Places[0].Rank)
	assert.Equal(t, []string{"google_maps"}, result.SourcesUsed)
}

func TestQueryEndpoint_BadRequests(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"query":`},
		{name: "missing query", body: `{}`},
		{name: "blank query", body: `{"query": "   "}`},
		{name: "limit too large", body: `{"query": "tacos", "limit": 100}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/query", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestGetEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rr := postJSON(t, h, "/api/v1/recommendations/query", map[string]any{"query": "coffee"})
	require.Equal(t, http.StatusOK, rr.Code)
	var result model.RecommendResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))

	rr = get(t, h, "/api/v1/recommendations/"+result.ID)
	require.Equal(t, http.StatusOK, rr.Code)
	var rec model.RecommendationRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, result.ID, rec.ID)
	assert.Equal(t, "coffee", rec.Query)

	rr = get(t, h, "/api/v1/recommendations/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListEndpoint(t *testing.T) {
	h := newTestHandler(t)

	for _, q := range []string{"coffee downtown", "rooftop bar"} {
		rr := postJSON(t, h, "/api/v1/recommendations/query", map[string]any{"query": q})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := get(t, h, "/api/v1/recommendations")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Recommendations []model.RecommendationRecord `json:"recommendations"`
		Count           int                          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)

	rr = get(t, h, "/api/v1/recommendations?q=coffee")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	rr = get(t, h, "/api/v1/recommendations?limit=bogus")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFeedbackEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rr := postJSON(t, h, "/api/v1/recommendations/query", map[string]any{"query": "coffee"})
	require.Equal(t, http.StatusOK, rr.Code)
	var result model.RecommendResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))

	feedbackPath := "/api/v1/recommendations/" + result.ID + "/feedback"

	rr = postJSON(t, h, feedbackPath, map[string]int{"rating": 5})
	assert.Equal(t, http.StatusOK, rr.Code)

	// Second submission conflicts.
	rr = postJSON(t, h, feedbackPath, map[string]int{"rating": 1})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = postJSON(t, h, feedbackPath, map[string]int{"rating": 7})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = postJSON(t, h, "/api/v1/recommendations/missing/feedback", map[string]int{"rating": 3})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInsightsEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rr := postJSON(t, h, "/api/v1/recommendations/query", map[string]any{"query": "coffee"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = get(t, h, "/api/v1/insights")
	require.Equal(t, http.StatusOK, rr.Code)
	var ins recommend.Insights
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ins))
	assert.Equal(t, 1, ins.TotalRecommendations)
}
