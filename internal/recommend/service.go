// Package recommend orchestrates one recommendation query end to end:
// fan out to the configured providers, normalize and rank what comes
// back, run generative enrichment, and persist the audit record.
package recommend

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/placescout/placescout/internal/config"
	"github.com/placescout/placescout/internal/enrich"
	"github.com/placescout/placescout/internal/geo"
	"github.com/placescout/placescout/internal/intent"
	"github.com/placescout/placescout/internal/model"
	"github.com/placescout/placescout/internal/normalize"
	"github.com/placescout/placescout/internal/ranker"
	"github.com/placescout/placescout/internal/resilience"
	"github.com/placescout/placescout/internal/source"
	"github.com/placescout/placescout/internal/store"
)

// Sentinel errors for the failure classes callers branch on.
var (
	ErrInvalidRequest = eris.New("recommend: invalid request")
	ErrNoCandidates   = eris.New("recommend: no candidates from any source")
	ErrPersist        = eris.New("recommend: persist recommendation")
)

// Service runs the recommendation pipeline.
type Service struct {
	cfg       *config.Config
	providers []source.Provider
	store     store.Store
	enricher  *enrich.Enricher
}

// New creates a Service. Provider order is preserved and determines the
// order of sources_used in responses.
func New(cfg *config.Config, providers []source.Provider, st store.Store, enricher *enrich.Enricher) *Service {
	return &Service{
		cfg:       cfg,
		providers: providers,
		store:     st,
		enricher:  enricher,
	}
}

// Recommend executes one query through the full pipeline.
func (s *Service) Recommend(ctx context.Context, req model.RecommendRequest) (*model.RecommendResult, error) {
	log := zap.L().With(zap.String("query", req.Query))

	if err := req.Validate(); err != nil {
		return nil, eris.Wrap(ErrInvalidRequest, err.Error())
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Recommend.DefaultLimit
	}
	if limit <= 0 {
		limit = 5
	}

	candidates, sourcesSeen, fetchErrs := s.fetch(ctx, req)
	log.Info("recommend: fetched candidates",
		zap.Int("count", len(candidates)),
		zap.Int("provider_errors", len(fetchErrs)),
	)

	normalized := normalizeAll(candidates)
	normalized = s.filterByDistance(normalized, req.Location)
	sourcesUsed := make(map[model.Source]bool, 2)
	for _, p := range normalized {
		sourcesUsed[p.Provenance.Source] = true
	}
	if len(normalized) == 0 {
		if len(fetchErrs) > 0 && len(sourcesSeen) == 0 {
			return nil, eris.Wrap(ErrNoCandidates, fetchErrs[0].Error())
		}
		return nil, ErrNoCandidates
	}

	queryIntent := intent.Extract(req.Query)
	ranked := ranker.Rank(req.Query, queryIntent, normalized, req.Preferences, limit)

	enriched := s.enricher.Enrich(ctx, req.Query, ranked, queryIntent, req.Preferences, req.Context)

	places := assemblePlaces(ranked, enriched)

	rec := &model.RecommendationRecord{
		Query:       req.Query,
		Location:    req.Location,
		Preferences: req.Preferences,
		Context:     req.Context,
		Places:      places,
		Narrative:   enriched.Summary,
	}
	if err := s.store.CreateRecommendation(ctx, rec); err != nil {
		return nil, eris.Wrap(ErrPersist, err.Error())
	}

	s.promotePlaces(ctx, ranked)

	return &model.RecommendResult{
		ID:             rec.ID,
		Query:          req.Query,
		Summary:        enriched.Summary,
		Places:         places,
		AdditionalTips: enriched.AdditionalTips,
		SourcesUsed:    orderSources(s.providers, sourcesUsed),
	}, nil
}

// fetch fans out to all providers concurrently. Individual provider
// failures are collected, not fatal; the pipeline proceeds with
// whatever came back.
func (s *Service) fetch(ctx context.Context, req model.RecommendRequest) ([]source.Candidate, map[model.Source]bool, []error) {
	timeout := time.Duration(s.cfg.Recommend.ProviderTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retryCfg := resilience.FromRetryConfig(s.cfg.Recommend.RetryAttempts, s.cfg.Recommend.RetryBackoffMs)

	var mu sync.Mutex
	var all []source.Candidate
	var errs []error
	seen := make(map[model.Source]bool)

	g, gCtx := errgroup.WithContext(ctx)
	for _, p := range s.providers {
		p := p
		g.Go(func() error {
			pCtx, cancel := context.WithTimeout(gCtx, timeout)
			defer cancel()

			cfg := retryCfg
			cfg.OnRetry = resilience.RetryLogger(string(p.ID()), "fetch")
			got, err := resilience.DoVal(pCtx, cfg, func(ctx context.Context) ([]source.Candidate, error) {
				return p.Fetch(ctx, req.Query, req.Location)
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zap.L().Warn("recommend: provider fetch failed",
					zap.String("provider", string(p.ID())),
					zap.Error(err),
				)
				errs = append(errs, err)
				return nil
			}
			if len(got) > 0 {
				seen[p.ID()] = true
			}
			all = append(all, got...)
			return nil
		})
	}
	_ = g.Wait()

	return all, seen, errs
}

// normalizeAll converts raw candidates to the canonical shape, dropping
// any that fail validation.
func normalizeAll(candidates []source.Candidate) []model.NormalizedPlace {
	var out []model.NormalizedPlace
	for _, c := range candidates {
		place, ok := normalize.Candidate(c)
		if !ok {
			continue
		}
		out = append(out, *place)
	}
	return out
}

// filterByDistance drops places with known coordinates outside the
// configured radius around the requested location. Places without
// coordinates (discussion posts, mostly) pass through untouched.
func (s *Service) filterByDistance(places []model.NormalizedPlace, loc *model.Coordinates) []model.NormalizedPlace {
	if loc == nil {
		return places
	}
	radius := s.cfg.Recommend.MaxDistanceKM
	if radius <= 0 {
		radius = 50
	}

	out := places[:0]
	for _, p := range places {
		if p.Coordinates != nil && !geo.WithinRadiusKM(*loc, *p.Coordinates, radius) {
			zap.L().Debug("recommend: place outside radius",
				zap.String("place_id", p.ID),
				zap.Float64("distance_km", geo.HaversineKM(*loc, *p.Coordinates)),
			)
			continue
		}
		out = append(out, p)
	}
	return out
}

// assemblePlaces builds the final response entries from the ranked
// candidates, carrying over backend reasoning where the backend named a
// ranked place. Rank and score always come from the ranker so ordering
// stays dense and reproducible whatever the backend said.
func assemblePlaces(ranked []model.ScoredCandidate, enriched *enrich.EnrichedResult) []model.RecommendedPlace {
	reasoning := make(map[string]string, len(enriched.Places))
	for _, ep := range enriched.Places {
		if ep.Reasoning != "" {
			reasoning[strings.ToLower(ep.Name)] = ep.Reasoning
		}
	}

	places := make([]model.RecommendedPlace, 0, len(ranked))
	for _, sc := range ranked {
		reason := sc.Reason
		if r, ok := reasoning[strings.ToLower(sc.Place.Name)]; ok {
			reason = r
		}
		places = append(places, model.RecommendedPlace{
			Name:      sc.Place.Name,
			Category:  sc.Place.Category,
			Reasoning: reason,
			Rank:      sc.Rank,
			Score:     sc.Score,
			Source:    sc.Place.Provenance.Source,
		})
	}
	return places
}

// promotePlaces saves the ranked places for reuse across queries. Best
// effort only.
func (s *Service) promotePlaces(ctx context.Context, ranked []model.ScoredCandidate) {
	for _, sc := range ranked {
		if err := s.store.UpsertPlace(ctx, sc.Place); err != nil {
			zap.L().Warn("recommend: promote place failed",
				zap.String("place_id", sc.Place.ID),
				zap.Error(err),
			)
			continue
		}
	}
}

// orderSources returns the used sources in provider order so the list
// is stable run to run.
func orderSources(providers []source.Provider, used map[model.Source]bool) []string {
	out := make([]string, 0, len(used))
	for _, p := range providers {
		if used[p.ID()] {
			out = append(out, string(p.ID()))
		}
	}
	if len(out) == len(used) {
		return out
	}
	// A source with no live provider (promoted places) sorts after.
	rest := make([]string, 0)
	have := make(map[string]bool, len(out))
	for _, s := range out {
		have[s] = true
	}
	for src := range used {
		if !have[string(src)] {
			rest = append(rest, string(src))
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
