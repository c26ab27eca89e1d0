// Package store persists completed recommendations and promoted places
// behind a driver-agnostic interface. SQLite backs local single-binary
// use; Postgres backs shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/placescout/placescout/internal/model"
)

// Sentinel errors callers branch on.
var (
	ErrNotFound    = eris.New("store: not found")
	ErrFeedbackSet = eris.New("store: feedback already recorded")
)

// RecommendationFilter specifies criteria for listing recommendations.
type RecommendationFilter struct {
	Query  string `json:"query,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the recommendation
// pipeline.
type Store interface {
	// Recommendations
	CreateRecommendation(ctx context.Context, rec *model.RecommendationRecord) error
	GetRecommendation(ctx context.Context, id string) (*model.RecommendationRecord, error)
	ListRecommendations(ctx context.Context, filter RecommendationFilter) ([]model.RecommendationRecord, error)

	// SetFeedback attaches a rating to a recommendation once. A second
	// call for the same id returns ErrFeedbackSet.
	SetFeedback(ctx context.Context, id string, rating int) error

	// Places promoted out of query scope for reuse across queries.
	UpsertPlace(ctx context.Context, place model.NormalizedPlace) error
	GetPlace(ctx context.Context, id string) (*model.NormalizedPlace, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
