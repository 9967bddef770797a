package trendline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"time"

	"github.com/aretw0/trendline/internal/runtime"
	"github.com/aretw0/trendline/pkg/adapters/memory"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/pipeline"
	"github.com/aretw0/trendline/pkg/ports"
	"github.com/google/uuid"
)

// Version is the release of the library and CLI.
const Version = "0.1.0"

// DefaultLockTTL bounds how long a run lock survives a crashed holder.
const DefaultLockTTL = 10 * time.Minute

// Engine is the high-level entry point for the Trendline library.
// It wraps the step runtime and the trending pipeline behind a simplified API.
type Engine struct {
	runtime  *runtime.Engine
	source   ports.RepositorySource
	model    ports.Inferencer
	store    ports.ReportStore
	locker   ports.RunLocker
	lockTTL  time.Duration
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	config   domain.Config
	maxSteps int
	now      func() time.Time
	newID    func() string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSource sets the repository search collaborator. Required.
func WithSource(s ports.RepositorySource) Option {
	return func(e *Engine) {
		e.source = s
	}
}

// WithInferencer sets the language model collaborator. Required.
func WithInferencer(m ports.Inferencer) Option {
	return func(e *Engine) {
		e.model = m
	}
}

// WithStore sets where completed reports are persisted (default: in memory).
func WithStore(s ports.ReportStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker serializes concurrent runs of the same query.
func WithLocker(l ports.RunLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = l
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = domain.ChainHooks(e.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConfig sets the base run configuration; per-run overrides are layered on top.
func WithConfig(cfg domain.Config) Option {
	return func(e *Engine) {
		maps.Copy(e.config, cfg)
	}
}

// WithMaxSteps bounds the number of steps executed per run.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithClock overrides the time source for search windows and report timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides how run IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// New compiles the trending pipeline into an engine.
// The base configuration is validated eagerly so misconfiguration fails here rather than mid-run.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		lockTTL: DefaultLockTTL,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		config:  domain.Config{},
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.source == nil {
		return nil, errors.New("a repository source is required")
	}
	if eng.model == nil {
		return nil, errors.New("an inferencer is required")
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if _, err := pipeline.DecodeOptions(eng.config); err != nil {
		return nil, err
	}

	p := pipeline.New(eng.source, eng.model,
		pipeline.WithLogger(eng.logger),
		pipeline.WithClock(eng.now),
	)
	g, err := p.Graph()
	if err != nil {
		return nil, err
	}

	rt, err := runtime.Compile(g,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithInvariant(pipeline.CheckInvariants),
		runtime.WithMaxSteps(eng.maxSteps),
		runtime.WithClock(eng.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pipeline: %w", err)
	}
	eng.runtime = rt
	return eng, nil
}

// Run executes the pipeline for query and returns the final state.
// overrides are layered on top of the base configuration for this run only.
func (e *Engine) Run(ctx context.Context, query string, overrides domain.Config) (domain.State, error) {
	cfg := e.config.Clone()
	maps.Copy(cfg, overrides)
	return e.runtime.Run(ctx, domain.NewState(query), cfg)
}

// Summarize runs the pipeline and persists the resulting report.
// An empty query selects domain.DefaultQuery.
func (e *Engine) Summarize(ctx context.Context, query string) (*domain.Report, error) {
	return e.SummarizeWith(ctx, query, nil)
}

// SummarizeWith is Summarize with per-run configuration overrides.
func (e *Engine) SummarizeWith(ctx context.Context, query string, overrides domain.Config) (*domain.Report, error) {
	runID := domain.RunIDFrom(ctx)
	if runID == "" {
		runID = e.newID()
		ctx = domain.WithRunID(ctx, runID)
	}
	query, err := SanitizeQuery(query)
	if err != nil {
		return nil, err
	}
	if query == "" {
		query = domain.DefaultQuery
	}

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, "summarize:"+query, e.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.Warn("failed to release run lock", "run_id", runID, "err", err)
			}
		}()
	}

	final, err := e.Run(ctx, query, overrides)
	if err != nil {
		return nil, err
	}

	report := domain.NewReport(runID, final, e.now())
	if err := e.store.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report %s: %w", runID, err)
	}
	e.logger.Info("report saved", "run_id", runID, "repositories", len(report.Repositories))
	return report, nil
}

// Report loads a previously saved report.
func (e *Engine) Report(ctx context.Context, runID string) (*domain.Report, error) {
	return e.store.Load(ctx, runID)
}

// Reports lists the run IDs of saved reports.
func (e *Engine) Reports(ctx context.Context) ([]string, error) {
	return e.store.List(ctx)
}

// DeleteReport removes the report saved for runID.
func (e *Engine) DeleteReport(ctx context.Context, runID string) error {
	return e.store.Delete(ctx, runID)
}

// Describe returns the compiled step graph.
func (e *Engine) Describe() []domain.StepNode {
	return e.runtime.Describe()
}
