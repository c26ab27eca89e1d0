package recommend

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/placescout/placescout/internal/model"
	"github.com/placescout/placescout/internal/store"
)

// Insights summarizes the stored recommendation history.
type Insights struct {
	TotalRecommendations int             `json:"total_recommendations"`
	RatedCount           int             `json:"rated_count"`
	AverageFeedback      float64         `json:"average_feedback,omitempty"`
	TopCategories        []CategoryCount `json:"top_categories,omitempty"`
}

// CategoryCount is one category with its occurrence count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// History lists stored recommendations newest first.
func (s *Service) History(ctx context.Context, filter store.RecommendationFilter) ([]model.RecommendationRecord, error) {
	recs, err := s.store.ListRecommendations(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "recommend: list history")
	}
	return recs, nil
}

// GetRecommendation fetches one stored recommendation by id.
func (s *Service) GetRecommendation(ctx context.Context, id string) (*model.RecommendationRecord, error) {
	return s.store.GetRecommendation(ctx, id)
}

// SubmitFeedback attaches a 1-5 rating to a stored recommendation.
func (s *Service) SubmitFeedback(ctx context.Context, id string, rating int) error {
	if !model.ValidFeedback(rating) {
		return eris.Wrap(ErrInvalidRequest, "feedback rating must be between 1 and 5")
	}
	return s.store.SetFeedback(ctx, id, rating)
}

// BuildInsights computes aggregate statistics over recent history.
func (s *Service) BuildInsights(ctx context.Context, limit int) (*Insights, error) {
	if limit <= 0 {
		limit = 100
	}
	recs, err := s.store.ListRecommendations(ctx, store.RecommendationFilter{Limit: limit})
	if err != nil {
		return nil, eris.Wrap(err, "recommend: load history for insights")
	}

	ins := &Insights{TotalRecommendations: len(recs)}

	categories := make(map[string]int)
	feedbackSum := 0
	for _, rec := range recs {
		for _, p := range rec.Places {
			if p.Category != "" {
				categories[p.Category]++
			}
		}
		if rec.Feedback != nil {
			ins.RatedCount++
			feedbackSum += *rec.Feedback
		}
	}
	if ins.RatedCount > 0 {
		ins.AverageFeedback = float64(feedbackSum) / float64(ins.RatedCount)
	}

	for cat, n := range categories {
		ins.TopCategories = append(ins.TopCategories, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(ins.TopCategories, func(i, j int) bool {
		if ins.TopCategories[i].Count != ins.TopCategories[j].Count {
			return ins.TopCategories[i].Count > ins.TopCategories[j].Count
		}
		return ins.TopCategories[i].Category < ins.TopCategories[j].Category
	})
	if len(ins.TopCategories) > 5 {
		ins.TopCategories = ins.TopCategories[:5]
	}
	return ins, nil
}
