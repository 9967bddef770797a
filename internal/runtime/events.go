package runtime

import (
	"context"
	"time"

	"github.com/aretw0/trendline/pkg/domain"
)

func (e *Engine) base(t domain.EventType, runID string) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, RunID: runID}
}

func (e *Engine) emitRunStart(ctx context.Context, runID, query string) {
	if e.hooks.OnRunStart != nil {
		e.hooks.OnRunStart(ctx, &domain.RunEvent{
			EventBase: e.base(domain.EventRunStart, runID),
			Query:     query,
		})
	}
}

func (e *Engine) emitRunEnd(ctx context.Context, runID string, steps int, d time.Duration, err error) {
	if e.hooks.OnRunEnd != nil {
		e.hooks.OnRunEnd(ctx, &domain.RunEvent{
			EventBase: e.base(domain.EventRunEnd, runID),
			Steps:     steps,
			Duration:  d,
			Err:       err,
		})
	}
}

func (e *Engine) emitStepEnter(ctx context.Context, runID, step string, iteration int) {
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, &domain.StepEvent{
			EventBase: e.base(domain.EventStepEnter, runID),
			Step:      step,
			Iteration: iteration,
		})
	}
}

func (e *Engine) emitStepLeave(ctx context.Context, runID, step string, iteration int, d time.Duration, changed []string, state domain.State, err error) {
	if e.hooks.OnStepLeave != nil {
		e.hooks.OnStepLeave(ctx, &domain.StepEvent{
			EventBase: e.base(domain.EventStepLeave, runID),
			Step:      step,
			Iteration: iteration,
			Duration:  d,
			Changed:   changed,
			State:     state.Clone(),
			Err:       err,
		})
	}
}

func (e *Engine) emitRoute(ctx context.Context, runID, from string, route domain.Route, to string) {
	if e.hooks.OnRoute != nil {
		e.hooks.OnRoute(ctx, &domain.RouteEvent{
			EventBase: e.base(domain.EventRoute, runID),
			From:      from,
			Route:     route,
			To:        to,
		})
	}
}
