package source

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/placescout/placescout/internal/model"
	"github.com/placescout/placescout/pkg/reddit"
)

// defaultSubreddits are searched when no subreddit list is configured.
var defaultSubreddits = []string{"food", "restaurants", "coffee", "bars", "nightlife", "activities"}

// recommendationKeywords make a post relevant even when no query term
// appears in it.
var recommendationKeywords = []string{
	"recommend", "suggestion", "best", "favorite", "go to",
	"visit", "check out", "try", "love", "amazing",
}

// RedditProvider fetches discussion posts mentioning places.
type RedditProvider struct {
	client     reddit.Client
	subreddits []string
	maxPosts   int
}

// NewRedditProvider creates a provider searching the given subreddits.
func NewRedditProvider(client reddit.Client, subreddits []string, maxPosts int) *RedditProvider {
	if len(subreddits) == 0 {
		subreddits = defaultSubreddits
	}
	if maxPosts <= 0 {
		maxPosts = 20
	}
	return &RedditProvider{client: client, subreddits: subreddits, maxPosts: maxPosts}
}

func (p *RedditProvider) ID() model.Source {
	return model.SourceReddit
}

// Fetch searches each configured subreddit. A single subreddit failing
// is logged and skipped; only a total failure is returned as an error.
func (p *RedditProvider) Fetch(ctx context.Context, query string, _ *model.Coordinates) ([]Candidate, error) {
	var candidates []Candidate
	var lastErr error
	failures := 0

	for _, sub := range p.subreddits {
		posts, err := p.client.Search(ctx, sub, query, p.maxPosts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			zap.L().Warn("source: subreddit search failed",
				zap.String("subreddit", sub),
				zap.Error(err),
			)
			failures++
			lastErr = err
			continue
		}

		for i := range posts {
			if !relevantPost(&posts[i], query) {
				continue
			}
			candidates = append(candidates, Candidate{
				Source:     model.SourceReddit,
				RedditPost: &posts[i],
			})
		}
	}

	if failures == len(p.subreddits) && lastErr != nil {
		return nil, lastErr
	}

	zap.L().Debug("source: reddit fetched",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// relevantPost reports whether a post plausibly discusses the queried
// kind of place: any query term or any recommendation keyword appears
// in the title or body.
func relevantPost(post *reddit.Post, query string) bool {
	title := strings.ToLower(post.Title)
	body := strings.ToLower(post.SelfText)

	for _, term := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(title, term) || strings.Contains(body, term) {
			return true
		}
	}
	for _, kw := range recommendationKeywords {
		if strings.Contains(title, kw) || strings.Contains(body, kw) {
			return true
		}
	}
	return false
}
