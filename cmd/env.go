package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/placescout/placescout/internal/enrich"
	"github.com/placescout/placescout/internal/recommend"
	"github.com/placescout/placescout/internal/source"
	"github.com/placescout/placescout/internal/store"
	anthropicpkg "github.com/placescout/placescout/pkg/anthropic"
	"github.com/placescout/placescout/pkg/googleplaces"
	"github.com/placescout/placescout/pkg/openai"
	"github.com/placescout/placescout/pkg/reddit"
)

// serviceEnv holds the wired store and recommendation service used by
// the serve/recommend/history commands.
type serviceEnv struct {
	Store   store.Store
	Service *recommend.Service
}

// Close releases resources held by the environment.
func (se *serviceEnv) Close() {
	if se.Store != nil {
		_ = se.Store.Close()
	}
}

// initService sets up the store, source providers, and the enrichment
// backend. Callers should defer env.Close().
func initService(ctx context.Context) (*serviceEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var providers []source.Provider

	if cfg.GooglePlaces.Key != "" {
		var opts []googleplaces.Option
		if cfg.GooglePlaces.BaseURL != "" {
			opts = append(opts, googleplaces.WithBaseURL(cfg.GooglePlaces.BaseURL))
		}
		client := googleplaces.NewClient(cfg.GooglePlaces.Key, opts...)
		providers = append(providers, source.NewGooglePlacesProvider(client, cfg.GooglePlaces.MaxResults))
		zap.L().Info("google places provider enabled")
	} else {
		zap.L().Warn("PLACESCOUT_GOOGLE_PLACES_KEY not set, google places provider disabled")
	}

	redditClient := reddit.NewClient(
		reddit.WithBaseURL(cfg.Reddit.BaseURL),
		reddit.WithUserAgent(cfg.Reddit.UserAgent),
		reddit.WithRateLimit(cfg.Reddit.RateLimit),
	)
	providers = append(providers, source.NewRedditProvider(redditClient, cfg.Reddit.Subreddits, cfg.Reddit.MaxPosts))

	var anthropicClient anthropicpkg.Client
	if cfg.AI.Anthropic.Key != "" {
		anthropicClient = anthropicpkg.NewClient(cfg.AI.Anthropic.Key)
	}
	var openaiClient openai.Client
	if cfg.AI.OpenAI.Key != "" {
		openaiClient = openai.NewClient(cfg.AI.OpenAI.Key,
			openai.WithBaseURL(cfg.AI.OpenAI.BaseURL),
			openai.WithModel(cfg.AI.OpenAI.Model),
		)
	}

	backend := enrich.NewBackend(cfg.AI, anthropicClient, openaiClient)
	enricher := enrich.New(backend, time.Duration(cfg.Recommend.EnrichTimeoutSecs)*time.Second)

	svc := recommend.New(cfg, providers, st, enricher)
	return &serviceEnv{Store: st, Service: svc}, nil
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: int32(cfg.Store.MaxConns),
			MinConns: int32(cfg.Store.MinConns),
		})
		if err != nil {
			return nil, eris.Wrap(err, "open postgres store")
		}
		return st, nil
	case "sqlite", "":
		st, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "open sqlite store")
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
