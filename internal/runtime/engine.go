package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/trendline/pkg/domain"
)

// ErrStepLimitExceeded is returned when a run performs more step executions than allowed by WithMaxSteps.
var ErrStepLimitExceeded = errors.New("step limit exceeded")

// InvariantFunc checks the merged state after a step. A non-nil error aborts the run.
type InvariantFunc func(step string, state domain.State) error

// Engine is the compiled, immutable step graph runner.
// A single Engine can serve concurrent runs: every run owns its own state.
type Engine struct {
	entry  string
	order  []string
	steps  map[string]domain.Step
	edges  map[string]domain.Edge
	policy domain.MergePolicy

	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	invariant InvariantFunc
	maxSteps  int
	now       func() time.Time
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithInvariant installs a check executed after every merge.
func WithInvariant(fn InvariantFunc) EngineOption {
	return func(e *Engine) {
		e.invariant = fn
	}
}

// WithMaxSteps bounds the number of step executions per run (0 = unbounded).
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithClock overrides the time source used for events and durations.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Compile validates the graph wiring and returns a ready-to-run Engine.
// Wiring problems are reported as *domain.ConfigurationError.
func Compile(g domain.Graph, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		entry:  g.Entry,
		steps:  make(map[string]domain.Step, len(g.Steps)),
		edges:  make(map[string]domain.Edge, len(g.Edges)),
		policy: g.Policy,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.register(g); err != nil {
		return nil, err
	}
	if err := e.validate(); err != nil {
		return nil, err
	}

	e.logger.Debug("graph compiled", "entry", e.entry, "steps", len(e.order))
	return e, nil
}

// Entry returns the name of the first step.
func (e *Engine) Entry() string {
	return e.entry
}

// Run executes the graph from the entry step until the END marker is reached.
// On failure the partial state is discarded and the zero State is returned.
func (e *Engine) Run(ctx context.Context, initial domain.State, cfg domain.Config) (domain.State, error) {
	runID := domain.RunIDFrom(ctx)
	logger := e.logger
	if runID != "" {
		logger = logger.With("run_id", runID)
	}

	cfg = cfg.Clone()
	state := initial.Clone()
	started := e.now()
	visits := make(map[string]int, len(e.order))
	executed := 0

	e.emitRunStart(ctx, runID, state.Query)
	logger.Debug("run started", "entry", e.entry, "query", state.Query)

	fail := func(err error) (domain.State, error) {
		logger.Warn("run failed", "steps", executed, "err", err)
		e.emitRunEnd(ctx, runID, executed, e.now().Sub(started), err)
		return domain.State{}, err
	}

	current := e.entry
	for current != domain.End {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("run interrupted before step '%s': %w", current, err))
		}
		if e.maxSteps > 0 && executed >= e.maxSteps {
			return fail(fmt.Errorf("%w: %d executions before step '%s'", ErrStepLimitExceeded, executed, current))
		}

		step := e.steps[current]
		visits[current]++
		executed++
		iteration := visits[current]

		e.emitStepEnter(ctx, runID, current, iteration)
		stepStart := e.now()

		update, err := step.Run(ctx, state.Clone(), cfg)
		if err != nil {
			stepErr := &domain.StepError{Step: current, Iteration: iteration, Err: err}
			e.emitStepLeave(ctx, runID, current, iteration, e.now().Sub(stepStart), nil, state, stepErr)
			return fail(stepErr)
		}

		next := e.policy.Apply(state, update)
		if e.invariant != nil {
			if err := e.invariant(current, next); err != nil {
				stepErr := &domain.StepError{Step: current, Iteration: iteration, Err: err}
				e.emitStepLeave(ctx, runID, current, iteration, e.now().Sub(stepStart), update.Fields(), next, stepErr)
				return fail(stepErr)
			}
		}
		state = next

		elapsed := e.now().Sub(stepStart)
		e.emitStepLeave(ctx, runID, current, iteration, elapsed, update.Fields(), state, nil)
		logger.Debug("step completed", "step", current, "iteration", iteration, "duration", elapsed, "changed", update.Fields())

		target, err := e.successor(ctx, runID, current, state)
		if err != nil {
			return fail(err)
		}
		current = target
	}

	e.emitRunEnd(ctx, runID, executed, e.now().Sub(started), nil)
	logger.Debug("run completed", "steps", executed)
	return state, nil
}

// successor follows the outgoing edge of a step.
func (e *Engine) successor(ctx context.Context, runID, from string, state domain.State) (string, error) {
	edge := e.edges[from]
	if !edge.Conditional() {
		return edge.To, nil
	}

	route := edge.Decide(state)
	target, ok := edge.Routes[route]
	if !ok {
		declared := make([]domain.Route, 0, len(edge.Routes))
		for r := range edge.Routes {
			declared = append(declared, r)
		}
		return "", &domain.RoutingError{Step: from, Route: route, Declared: declared}
	}

	e.emitRoute(ctx, runID, from, route, target)
	return target, nil
}
