package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// MaxQueryLength bounds the accepted free-text query.
const MaxQueryLength = 500

// RecommendRequest is the validated input to one recommendation query.
type RecommendRequest struct {
	Query       string       `json:"query" validate:"required,max=500"`
	Location    *Coordinates `json:"location,omitempty"`
	Preferences []string     `json:"preferences,omitempty"`
	Context     string       `json:"context,omitempty"`
	Limit       int          `json:"limit,omitempty" validate:"omitempty,min=1,max=20"`
}

// Validate applies the intake rules: non-empty query within the length
// bound, valid coordinates when supplied.
func (r *RecommendRequest) Validate() error {
	q := strings.TrimSpace(r.Query)
	if q == "" {
		return eris.New("model: query must not be empty")
	}
	if len(q) > MaxQueryLength {
		return eris.Errorf("model: query exceeds %d characters", MaxQueryLength)
	}
	if r.Location != nil && !r.Location.Valid() {
		return eris.New("model: location coordinates out of range")
	}
	if r.Limit < 0 {
		return eris.New("model: limit must be positive")
	}
	return nil
}

// ScoredCandidate pairs a normalized place with its rank, confidence
// score, and a human-readable reason. Ranks are dense and 1-based;
// scores are non-increasing as rank increases.
type ScoredCandidate struct {
	Place  NormalizedPlace `json:"place"`
	Score  float64         `json:"score"`
	Rank   int             `json:"rank"`
	Reason string          `json:"reason"`
}

// RecommendedPlace is one entry of the final response.
type RecommendedPlace struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Reasoning string  `json:"reasoning"`
	Rank      int     `json:"rank"`
	Score     float64 `json:"score"`
	Source    Source  `json:"source"`
}

// RecommendResult is the response returned to the caller.
type RecommendResult struct {
	ID             string             `json:"id"`
	Query          string             `json:"query"`
	Summary        string             `json:"summary"`
	Places         []RecommendedPlace `json:"places"`
	AdditionalTips string             `json:"additional_tips"`
	SourcesUsed    []string           `json:"sources_used"`
}

// RecommendationRecord is the persisted audit record of one completed
// query. Feedback is attached at most once by a later operation.
type RecommendationRecord struct {
	ID          string             `json:"id"`
	Query       string             `json:"query"`
	Location    *Coordinates       `json:"location,omitempty"`
	Preferences []string           `json:"preferences,omitempty"`
	Context     string             `json:"context,omitempty"`
	Places      []RecommendedPlace `json:"places"`
	Narrative   string             `json:"narrative"`
	Feedback    *int               `json:"feedback,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ValidFeedback reports whether a feedback rating is within [1,5].
func ValidFeedback(rating int) bool {
	return rating >= 1 && rating <= 5
}
