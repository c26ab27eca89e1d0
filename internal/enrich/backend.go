// Package enrich wraps pluggable generative-text backends that rewrite
// a ranked candidate list into a narrative recommendation. Failures at
// any point degrade to a deterministic fallback and never propagate.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/placescout/placescout/internal/config"
	"github.com/placescout/placescout/pkg/anthropic"
	"github.com/placescout/placescout/pkg/openai"
)

// Backend names accepted by configuration.
const (
	BackendCustom    = "custom"
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
)

// Backend is a generative-text capability: a prompt in, raw text out.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewBackend resolves the configured backend once. An unknown or
// misconfigured backend name returns nil, which disables enrichment
// and leaves the deterministic path in charge.
func NewBackend(cfg config.AIConfig, anthropicClient anthropic.Client, openaiClient openai.Client) Backend {
	switch cfg.Backend {
	case BackendCustom:
		return &customBackend{}
	case BackendAnthropic:
		if anthropicClient == nil {
			zap.L().Warn("enrich: anthropic backend selected but no client configured")
			return nil
		}
		return &anthropicBackend{
			client:    anthropicClient,
			model:     cfg.Anthropic.Model,
			maxTokens: int64(cfg.Anthropic.MaxTokens),
		}
	case BackendOpenAI:
		if openaiClient == nil {
			zap.L().Warn("enrich: openai backend selected but no client configured")
			return nil
		}
		return &openaiBackend{client: openaiClient, model: cfg.OpenAI.Model}
	default:
		zap.L().Warn("enrich: unknown backend, enrichment disabled", zap.String("backend", cfg.Backend))
		return nil
	}
}

type anthropicBackend struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func (b *anthropicBackend) Name() string { return BackendAnthropic }

func (b *anthropicBackend) Complete(ctx context.Context, prompt string) (string, error) {
	maxTokens := b.maxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     b.model,
		MaxTokens: maxTokens,
		System:    "You are a local community expert helping someone find great places to visit.",
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

type openaiBackend struct {
	client openai.Client
	model  string
}

func (b *openaiBackend) Name() string { return BackendOpenAI }

func (b *openaiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.ChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.Message{
			{Role: "system", Content: "You are a local community expert helping someone find great places to visit."},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &openai.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// customBackend is the in-process deterministic provider. It reads the
// serialized candidate block back out of the prompt and emits a
// structured response for the first three candidates.
type customBackend struct{}

func (b *customBackend) Name() string { return BackendCustom }

func (b *customBackend) Complete(_ context.Context, prompt string) (string, error) {
	places := candidatesFromPrompt(prompt)

	top := places
	if len(top) > 3 {
		top = top[:3]
	}
	for i := range top {
		if top[i].Reasoning == "" {
			top[i].Reasoning = fmt.Sprintf("Strong match in the %s category", top[i].Category)
		}
	}

	out := EnrichedResult{
		Summary:        summaryFromPrompt(prompt, len(top)),
		Places:         top,
		AdditionalTips: "Check current opening hours and recent reviews before heading out.",
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// candidatesFromPrompt recovers the JSON candidate array embedded in
// the prompt by the prompt builder.
func candidatesFromPrompt(prompt string) []EnrichedPlace {
	start := strings.Index(prompt, promptCandidatesHeader)
	if start < 0 {
		return nil
	}
	rest := prompt[start+len(promptCandidatesHeader):]

	open := strings.Index(rest, "[")
	if open < 0 {
		return nil
	}

	// The format instructions further down the prompt also contain
	// brackets, so decode just the first JSON value.
	var candidates []promptCandidate
	if err := json.NewDecoder(strings.NewReader(rest[open:])).Decode(&candidates); err != nil {
		return nil
	}

	out := make([]EnrichedPlace, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, EnrichedPlace{
			Name:     c.Name,
			Category: c.Category,
		})
	}
	return out
}

func summaryFromPrompt(prompt string, n int) string {
	query := queryFromPrompt(prompt)
	if query == "" {
		return fmt.Sprintf("Here are %d places that fit what you're looking for.", n)
	}
	return fmt.Sprintf("Here are %d places that fit your search for %q.", n, query)
}
