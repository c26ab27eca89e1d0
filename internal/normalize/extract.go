package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/placescout/placescout/internal/model"
)

// titlePatterns try to pull a place name out of a post title. Ordered;
// first match wins. Capitalization-based and known to be lossy.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([A-Z][a-zA-Z\s&'-]+?)(?:\s*[-–—]\s*|\s*:|\s*$)`),
	regexp.MustCompile(`^([A-Z][a-zA-Z\s&'-]+?)(?:\s+in\s+|\s+near\s+)`),
	regexp.MustCompile(`([A-Z][a-zA-Z\s&'-]+?)(?:\s+restaurant|\s+cafe|\s+bar|\s+shop)`),
}

// extractPlaceName applies the title patterns, then falls back to the
// longest run of consecutive capitalized words in the body.
func extractPlaceName(title, content string) string {
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(title); m != nil {
			name := strings.TrimSpace(m[1])
			if len(name) > 2 && len(name) < 100 {
				return name
			}
		}
	}

	// Fallback: consecutive capitalized words in the body (up to 4).
	words := strings.Fields(content)
	var best string
	for i, w := range words {
		if !startsUpper(w) || len(w) <= 2 {
			continue
		}
		parts := []string{w}
		for j := i + 1; j < len(words) && j < i+4; j++ {
			if !startsUpper(words[j]) {
				break
			}
			parts = append(parts, words[j])
		}
		candidate := strings.Join(parts, " ")
		if len(candidate) > len(best) {
			best = candidate
		}
	}
	return best
}

func startsUpper(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}

// categoryKeywords is the fixed category→keyword table for text
// sources. Iterated in order; first matching keyword wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{model.CategoryRestaurant, []string{"restaurant", "food", "dining", "eat", "meal"}},
	{model.CategoryCafe, []string{"cafe", "coffee", "tea", "bakery", "pastry"}},
	{model.CategoryBar, []string{"bar", "pub", "tavern", "brewery", "cocktail"}},
	{model.CategoryShop, []string{"shop", "store", "market", "boutique", "retail"}},
	{model.CategoryEntertainment, []string{"theater", "cinema", "museum", "gallery", "concert"}},
	{model.CategoryOutdoor, []string{"park", "trail", "beach", "hiking", "outdoor"}},
	{model.CategoryFitness, []string{"gym", "fitness", "yoga", "sports", "workout"}},
}

// categoryFromText buckets free text into a category, defaulting to
// local_place when nothing matches.
func categoryFromText(text string) string {
	lower := strings.ToLower(text)
	for _, bucket := range categoryKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				return bucket.category
			}
		}
	}
	return model.CategoryLocalPlace
}

var addressPattern = regexp.MustCompile(
	`\d+\s+[A-Z][a-zA-Z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd)`)

// extractAddress pulls a street address out of free text, if present.
func extractAddress(content string) string {
	if content == "" {
		return ""
	}
	return strings.TrimSpace(addressPattern.FindString(content))
}

// ratingPatterns match "4.5/5", "4 stars", "3 out of 5".
var ratingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*5`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*stars?`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*out\s*of\s*5`),
}

// extractRating pulls a 0..5 rating mention out of free text.
func extractRating(content string) (float64, bool) {
	if content == "" {
		return 0, false
	}
	for _, re := range ratingPatterns {
		if m := re.FindStringSubmatch(content); m != nil {
			rating, err := strconv.ParseFloat(m[1], 64)
			if err == nil && rating >= 0 && rating <= 5 {
				return rating, true
			}
		}
	}
	return 0, false
}

// tagVocabulary is the fixed set of descriptive tags recognized in
// discussion text.
var tagVocabulary = []string{
	"local", "authentic", "hidden gem", "popular", "trendy",
	"family-friendly", "romantic", "casual", "upscale", "budget-friendly",
	"quick", "quiet", "lively", "cozy", "spacious",
}

// extractTags collects the vocabulary tags mentioned in the text.
func extractTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, tag := range tagVocabulary {
		if strings.Contains(lower, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}
