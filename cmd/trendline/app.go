package main

import (
	"context"
	"fmt"

	"github.com/aretw0/trendline"
	"github.com/aretw0/trendline/internal/config"
	"github.com/aretw0/trendline/pkg/adapters/eino"
	"github.com/aretw0/trendline/pkg/adapters/github"
	"github.com/aretw0/trendline/pkg/adapters/langgraph"
	"github.com/aretw0/trendline/pkg/adapters/loam"
	"github.com/aretw0/trendline/pkg/adapters/memory"
	"github.com/aretw0/trendline/pkg/adapters/redis"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/persistence/middleware"
	"github.com/aretw0/trendline/pkg/ports"
)

// backend bundles the persistence collaborators selected by the store section.
type backend struct {
	store  ports.ReportStore
	locker ports.RunLocker
	close  func() error
}

func openBackend() (*backend, error) {
	b, err := openStore()
	if err != nil {
		return nil, err
	}
	mws, err := cfg.Store.Middlewares()
	if err != nil {
		b.close()
		return nil, err
	}
	b.store = middleware.Chain(b.store, mws...)
	return b, nil
}

func openStore() (*backend, error) {
	switch cfg.Store.Type {
	case config.StoreRedis:
		rc := cfg.Store.Redis
		opts := []redis.Option{redis.WithTTL(rc.TTL)}
		if rc.Prefix != "" {
			opts = append(opts, redis.WithPrefix(rc.Prefix))
		}
		store := redis.New(rc.Addr, rc.Password, rc.DB, opts...)
		return &backend{
			store:  store,
			locker: redis.NewLocker(store.Client(), "trendline:"),
			close:  store.Close,
		}, nil
	case config.StoreLoam:
		store, err := loam.New(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open report archive: %w", err)
		}
		return &backend{store: store, locker: memory.NewLocker(), close: func() error { return nil }}, nil
	default:
		return &backend{store: memory.NewStore(), locker: memory.NewLocker(), close: func() error { return nil }}, nil
	}
}

func newSource() *github.Client {
	opts := []github.Option{
		github.WithToken(cfg.GitHub.Token),
		github.WithLogger(logger),
	}
	if cfg.GitHub.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.GitHub.BaseURL))
	}
	if cfg.GitHub.RateLimit > 0 {
		opts = append(opts, github.WithRateLimit(cfg.GitHub.RateLimit, 1))
	}
	return github.New(opts...)
}

func newAssistants() *langgraph.Client {
	return langgraph.New(cfg.LangGraph.BaseURL, langgraph.WithLogger(logger))
}

// newEngine wires the configured collaborators into the facade.
// overrides are layered over the pipeline section of the configuration file.
func newEngine(ctx context.Context, b *backend, overrides domain.Config, extra ...trendline.Option) (*trendline.Engine, error) {
	model, err := eino.NewFromConfig(ctx, cfg.Model, eino.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	opts := []trendline.Option{
		trendline.WithSource(newSource()),
		trendline.WithInferencer(model),
		trendline.WithStore(b.store),
		trendline.WithLocker(b.locker, trendline.DefaultLockTTL),
		trendline.WithLogger(logger),
		trendline.WithConfig(cfg.RunConfig()),
		trendline.WithConfig(overrides),
	}
	return trendline.New(append(opts, extra...)...)
}
