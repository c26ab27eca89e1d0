package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/placescout/placescout/internal/model"
	"github.com/placescout/placescout/pkg/googleplaces"
)

// GooglePlacesProvider fetches candidates from the Places text-search API.
type GooglePlacesProvider struct {
	client     googleplaces.Client
	maxResults int
}

// NewGooglePlacesProvider creates a provider backed by the given client.
func NewGooglePlacesProvider(client googleplaces.Client, maxResults int) *GooglePlacesProvider {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &GooglePlacesProvider{client: client, maxResults: maxResults}
}

func (p *GooglePlacesProvider) ID() model.Source {
	return model.SourceGoogleMaps
}

func (p *GooglePlacesProvider) Fetch(ctx context.Context, query string, location *model.Coordinates) ([]Candidate, error) {
	req := googleplaces.TextSearchRequest{
		Query:      query,
		MaxResults: p.maxResults,
	}
	if location != nil {
		req.Latitude = location.Latitude
		req.Longitude = location.Longitude
	}

	resp, err := p.client.TextSearch(ctx, req)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(resp.Places))
	for i := range resp.Places {
		candidates = append(candidates, Candidate{
			Source:      model.SourceGoogleMaps,
			GooglePlace: &resp.Places[i],
		})
	}

	zap.L().Debug("source: google places fetched",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}
