package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placescout/placescout/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testRecord() *model.RecommendationRecord {
	return &model.RecommendationRecord{
		Query:       "best tacos near me",
		Location:    &model.Coordinates{Latitude: 30.2672, Longitude: -97.7431},
		Preferences: []string{"cheap", "outdoor seating"},
		Context:     "lunch with friends",
		Places: []model.RecommendedPlace{
			{Name: "Veracruz All Natural", Category: model.CategoryRestaurant, Reasoning: "Beloved migas tacos", Rank: 1, Score: 0.82, Source: model.SourceGoogleMaps},
			{Name: "Taco Joint", Category: model.CategoryRestaurant, Reasoning: "Local favorite", Rank: 2, Score: 0.64, Source: model.SourceReddit},
		},
		Narrative: "Austin runs on breakfast tacos.",
	}
}

func TestSQLiteStore_RecommendationRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := testRecord()
	require.NoError(t, s.CreateRecommendation(ctx, rec))
	require.NotEmpty(t, rec.ID)
	require.False(t, rec.CreatedAt.IsZero())

	got, err := s.GetRecommendation(ctx, rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Query, got.Query)
	require.NotNil(t, got.Location)
	assert.InDelta(t, 30.2672, got.Location.Latitude, 1e-9)
	assert.Equal(t, rec.Preferences, got.Preferences)
	assert.Equal(t, rec.Context, got.Context)
	require.Len(t, got.Places, 2)
	assert.Equal(t, "Veracruz All Natural", got.Places[0].Name)
	assert.Equal(t, 1, got.Places[0].Rank)
	assert.Equal(t, rec.Narrative, got.Narrative)
	assert.Nil(t, got.Feedback)
}

func TestSQLiteStore_GetRecommendation_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetRecommendation(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListRecommendations(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, q := range []string{"coffee shop downtown", "rooftop bar", "coffee roasters"} {
		rec := testRecord()
		rec.Query = q
		require.NoError(t, s.CreateRecommendation(ctx, rec))
	}

	all, err := s.ListRecommendations(ctx, RecommendationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	coffee, err := s.ListRecommendations(ctx, RecommendationFilter{Query: "coffee"})
	require.NoError(t, err)
	assert.Len(t, coffee, 2)

	limited, err := s.ListRecommendations(ctx, RecommendationFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_SetFeedback(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := testRecord()
	require.NoError(t, s.CreateRecommendation(ctx, rec))

	require.NoError(t, s.SetFeedback(ctx, rec.ID, 4))

	got, err := s.GetRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Feedback)
	assert.Equal(t, 4, *got.Feedback)

	// Feedback attaches at most once.
	err = s.SetFeedback(ctx, rec.ID, 2)
	assert.ErrorIs(t, err, ErrFeedbackSet)

	err = s.SetFeedback(ctx, "missing-id", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_PlaceUpsert(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	rating := 4.4
	place := model.NormalizedPlace{
		ID:         "google_maps:abc123",
		Name:       "Veracruz All Natural",
		Category:   model.CategoryRestaurant,
		Rating:     &rating,
		Price:      model.PriceCheap,
		Tags:       []string{"authentic"},
		Provenance: model.Provenance{Source: model.SourceGoogleMaps},
	}
	require.NoError(t, s.UpsertPlace(ctx, place))

	got, err := s.GetPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, place.Name, got.Name)
	assert.Equal(t, model.PriceCheap, got.Price)

	place.Name = "Veracruz All Natural (East Side)"
	require.NoError(t, s.UpsertPlace(ctx, place))

	got, err = s.GetPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, "Veracruz All Natural (East Side)", got.Name)

	_, err = s.GetPlace(ctx, "reddit:missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
