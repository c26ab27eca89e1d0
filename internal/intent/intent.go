// Package intent derives structured query signals from free text.
// Extraction is deterministic substring matching against fixed
// vocabularies; vocabulary order defines the tie-break.
package intent

import (
	"strings"

	"github.com/placescout/placescout/internal/model"
)

// placeTypes is ordered; the first type found in the query wins.
var placeTypes = []string{
	"restaurant", "cafe", "bar", "park", "museum", "shopping",
	"entertainment", "fitness", "beauty", "health", "education",
}

// priceSymbols is ordered longest-first so "$$$$" is matched before
// its shorter prefixes; the first symbol found wins.
var priceSymbols = []model.PriceTier{
	model.PriceLuxury,
	model.PricePricey,
	model.PriceModerate,
	model.PriceCheap,
}

// moodWords capture the activity mood a query implies.
var moodWords = []string{
	"romantic", "casual", "chill", "lively", "fancy", "cozy",
	"family", "date", "quiet",
}

var locationPhrases = []string{"near me", "nearby", "close to", "in my area", "local"}

var timePhrases = []string{"tonight", "today", "weekend", "morning", "evening", "lunch", "dinner"}

// Extract derives a QueryIntent from the raw query text. Fields with
// no matching vocabulary entry are left unset.
func Extract(query string) model.QueryIntent {
	lower := strings.ToLower(query)

	var out model.QueryIntent

	for _, pt := range placeTypes {
		if strings.Contains(lower, pt) {
			out.PlaceType = pt
			break
		}
	}

	for _, tier := range priceSymbols {
		if strings.Contains(lower, string(tier)) {
			out.Price = tier
			break
		}
	}

	for _, mood := range moodWords {
		if strings.Contains(lower, mood) {
			out.Mood = mood
			break
		}
	}

	for _, phrase := range locationPhrases {
		if strings.Contains(lower, phrase) {
			out.LocationSpecific = true
			break
		}
	}

	for _, phrase := range timePhrases {
		if strings.Contains(lower, phrase) {
			out.TimeSpecific = true
			break
		}
	}

	return out
}
