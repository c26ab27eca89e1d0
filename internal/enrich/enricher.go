package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/placescout/placescout/internal/model"
)

var errEmptyCompletion = eris.New("enrich: backend returned no completion")

// EnrichedPlace is one candidate with provider-supplied reasoning.
type EnrichedPlace struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	BestFor   string `json:"best_for,omitempty"`
}

// EnrichedResult is the structured output of one enrichment pass.
type EnrichedResult struct {
	Summary        string          `json:"summary"`
	Places         []EnrichedPlace `json:"places"`
	AdditionalTips string          `json:"additional_tips"`
}

// Enricher drives one generative pass over a ranked candidate list.
// A nil Enricher (or one with a nil backend) is valid and means the
// deterministic path runs alone.
type Enricher struct {
	backend Backend
	timeout time.Duration
}

// New creates an Enricher. backend may be nil.
func New(backend Backend, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Enricher{backend: backend, timeout: timeout}
}

// Enabled reports whether a backend is configured.
func (e *Enricher) Enabled() bool {
	return e != nil && e.backend != nil
}

// Enrich calls the backend and parses its output. Any failure
// (transport, timeout, unparsable content) is logged and replaced by
// the deterministic fallback; Enrich never returns an error.
func (e *Enricher) Enrich(ctx context.Context, query string, ranked []model.ScoredCandidate, queryIntent model.QueryIntent, preferences []string, userContext string) *EnrichedResult {
	if !e.Enabled() {
		return Fallback(query, ranked)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := BuildPrompt(query, ranked, queryIntent, preferences, userContext)

	raw, err := e.backend.Complete(ctx, prompt)
	if err != nil {
		zap.L().Warn("enrich: backend call failed, using fallback",
			zap.String("backend", e.backend.Name()),
			zap.Error(err),
		)
		return Fallback(query, ranked)
	}

	result, err := Parse(raw)
	if err != nil {
		zap.L().Warn("enrich: unparsable backend output, using fallback",
			zap.String("backend", e.backend.Name()),
			zap.Error(err),
		)
		return Fallback(query, ranked)
	}
	return result
}

// Parse extracts the structured result from raw model output. Policy:
// a fenced ```json block first, then the outermost braced structure by
// first '{' and last '}' positions.
func Parse(raw string) (*EnrichedResult, error) {
	payload := raw

	if idx := strings.Index(raw, "```json"); idx >= 0 {
		rest := raw[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			payload = rest[:end]
		} else {
			payload = rest
		}
	} else {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return nil, eris.New("enrich: no structured block in output")
		}
		payload = raw[start : end+1]
	}

	var result EnrichedResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &result); err != nil {
		return nil, eris.Wrap(err, "enrich: unmarshal output")
	}
	if result.Summary == "" && len(result.Places) == 0 {
		return nil, eris.New("enrich: output missing summary and places")
	}
	return &result, nil
}

// Fallback builds the deterministic substitute: a generic summary plus
// the first three ranked candidates verbatim.
func Fallback(query string, ranked []model.ScoredCandidate) *EnrichedResult {
	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}

	places := make([]EnrichedPlace, 0, len(top))
	for _, sc := range top {
		places = append(places, EnrichedPlace{
			Name:      sc.Place.Name,
			Category:  sc.Place.Category,
			Reasoning: sc.Reason,
		})
	}

	return &EnrichedResult{
		Summary:        fmt.Sprintf("Here are some places that might interest you based on your query: %q", query),
		Places:         places,
		AdditionalTips: "These are general recommendations. Consider checking reviews and current hours before visiting.",
	}
}
