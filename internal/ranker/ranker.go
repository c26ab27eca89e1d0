// Package ranker assigns confidence scores and dense ranks to
// normalized candidates. The scoring formula is deterministic and is
// the system of record; any generative re-ranking is an overlay that
// must degrade back to this baseline.
package ranker

import (
	"sort"
	"strings"

	"github.com/placescout/placescout/internal/model"
)

// Scoring weights for the baseline formula.
const (
	nameWeight        = 0.4
	descriptionWeight = 0.3
	categoryWeight    = 0.2
	ratingWeight      = 0.1
	maxScore          = 1.0
)

// reasons is a fixed pool; a candidate's reason is selected
// deterministically from its rank so repeat queries reproduce output.
var reasons = []string{
	"Matches your search criteria closely",
	"Highly rated by people looking for the same thing",
	"Popular choice for this kind of outing",
	"Trending spot with strong reviews",
	"Recommended by locals in community discussions",
	"Good fit for your activity type",
}

// Rank scores all candidates against the query and returns the top
// `limit` as ScoredCandidates with dense 1-based ranks. Sorting is
// stable: ties keep input order. Intent and preferences nudge scores
// before the clamp.
func Rank(query string, queryIntent model.QueryIntent, candidates []model.NormalizedPlace, preferences []string, limit int) []model.ScoredCandidate {
	if limit <= 0 {
		limit = 5
	}

	type scored struct {
		place model.NormalizedPlace
		score float64
	}

	items := make([]scored, 0, len(candidates))
	for _, place := range candidates {
		items = append(items, scored{place: place, score: Score(query, queryIntent, place, preferences)})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	if len(items) > limit {
		items = items[:limit]
	}

	out := make([]model.ScoredCandidate, len(items))
	for i, item := range items {
		out[i] = model.ScoredCandidate{
			Place:  item.place,
			Score:  item.score,
			Rank:   i + 1,
			Reason: reasons[i%len(reasons)],
		}
	}
	return out
}

// Score computes the baseline confidence score for one candidate:
// +0.4 query in name, +0.3 query in description, +0.2 query in
// category, +rating*0.1, plus small intent/preference nudges, clamped
// to 1.0. All comparisons are case-insensitive substring checks.
func Score(query string, queryIntent model.QueryIntent, place model.NormalizedPlace, preferences []string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))

	var score float64
	if q != "" {
		if strings.Contains(strings.ToLower(place.Name), q) {
			score += nameWeight
		}
		if strings.Contains(strings.ToLower(place.Description), q) {
			score += descriptionWeight
		}
		if strings.Contains(strings.ToLower(place.Category), q) {
			score += categoryWeight
		}
	}

	if place.Rating != nil {
		score += *place.Rating * ratingWeight
	}

	// Intent alignment: a matching place type or price tier is a weak
	// positive signal on top of the text match.
	if queryIntent.PlaceType != "" && strings.Contains(strings.ToLower(place.Category), queryIntent.PlaceType) {
		score += 0.05
	}
	if queryIntent.Price != "" && place.Price == queryIntent.Price {
		score += 0.05
	}

	for _, pref := range preferences {
		p := strings.ToLower(pref)
		if p == "" {
			continue
		}
		if containsTag(place.Tags, p) || strings.Contains(strings.ToLower(place.Category), p) {
			score += 0.05
			break
		}
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

func containsTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}
