package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/placescout/placescout/internal/model"
)

// Prompt section markers. The custom backend and tests rely on these
// being stable.
const (
	promptQueryHeader      = `User Query: `
	promptCandidatesHeader = "Available Places Data:\n"
)

// promptCandidate is the serialized shape of one candidate inside the
// prompt.
type promptCandidate struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Price       string   `json:"price,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source"`
	Rank        int      `json:"rank"`
	Score       float64  `json:"score"`
}

// BuildPrompt assembles the deterministic enrichment prompt from the
// query, the ranked candidates, and the optional user context.
func BuildPrompt(query string, ranked []model.ScoredCandidate, queryIntent model.QueryIntent, preferences []string, userContext string) string {
	var b strings.Builder

	b.WriteString("You are a local community expert helping someone find great places to visit.\n\n")
	b.WriteString(promptQueryHeader)
	fmt.Fprintf(&b, "%q\n", query)

	if queryIntent.PlaceType != "" {
		fmt.Fprintf(&b, "Detected Place Type: %s\n", queryIntent.PlaceType)
	}
	if queryIntent.Mood != "" {
		fmt.Fprintf(&b, "Detected Mood: %s\n", queryIntent.Mood)
	}
	if len(preferences) > 0 {
		fmt.Fprintf(&b, "User Preferences: %s\n", strings.Join(preferences, ", "))
	}
	if userContext != "" {
		fmt.Fprintf(&b, "Context: %s\n", userContext)
	}

	candidates := make([]promptCandidate, 0, len(ranked))
	for _, sc := range ranked {
		candidates = append(candidates, promptCandidate{
			Name:        sc.Place.Name,
			Category:    sc.Place.Category,
			Description: sc.Place.Description,
			Rating:      sc.Place.Rating,
			Price:       string(sc.Place.Price),
			Tags:        sc.Place.Tags,
			Source:      string(sc.Place.Provenance.Source),
			Rank:        sc.Rank,
			Score:       sc.Score,
		})
	}
	data, _ := json.MarshalIndent(candidates, "", "  ")

	b.WriteString("\n")
	b.WriteString(promptCandidatesHeader)
	b.Write(data)

	b.WriteString("\n\nPlease provide:\n")
	b.WriteString("1. A personalized recommendation based on the query and available data\n")
	b.WriteString("2. The top places that best match the user's needs\n")
	b.WriteString("3. Reasoning for each recommendation\n")
	b.WriteString("4. Any additional tips or considerations\n\n")
	b.WriteString("Format your response as JSON with this structure:\n")
	b.WriteString(`{
  "summary": "Brief overview of recommendations",
  "places": [
    {
      "name": "Place name",
      "reasoning": "Why this place is recommended",
      "category": "Place category",
      "best_for": "What this place is best for"
    }
  ],
  "additional_tips": "Any extra advice or considerations"
}`)
	b.WriteString("\n\nBe conversational, helpful, and consider the user's specific query and context.\n")

	return b.String()
}

// queryFromPrompt recovers the quoted query from a built prompt.
func queryFromPrompt(prompt string) string {
	start := strings.Index(prompt, promptQueryHeader)
	if start < 0 {
		return ""
	}
	rest := prompt[start+len(promptQueryHeader):]
	var query string
	if _, err := fmt.Sscanf(rest, "%q", &query); err != nil {
		return ""
	}
	return query
}
