// Package source defines the candidate provider contract and the
// adapters that turn external API payloads into raw candidates.
//
// A Candidate is a tagged variant: exactly one of its payload fields is
// set, matching its Source tag. Candidates never leave the
// provider+normalizer pass.
package source

import (
	"context"

	"github.com/placescout/placescout/internal/model"
	"github.com/placescout/placescout/pkg/googleplaces"
	"github.com/placescout/placescout/pkg/reddit"
)

// Candidate is one raw, provider-specific place record.
type Candidate struct {
	Source model.Source

	GooglePlace *googleplaces.Place
	RedditPost  *reddit.Post
}

// Provider fetches raw candidates from one external data source.
// Implementations must honor ctx cancellation; errors are recovered at
// the call site and treated as zero candidates.
type Provider interface {
	ID() model.Source
	Fetch(ctx context.Context, query string, location *model.Coordinates) ([]Candidate, error)
}
