package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart  EventType = "run_start"
	EventRunEnd    EventType = "run_end"
	EventStepEnter EventType = "step_enter"
	EventStepLeave EventType = "step_leave"
	EventRoute     EventType = "route"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// RunEvent marks the beginning or the end of a run.
type RunEvent struct {
	EventBase
	Query    string        `json:"query,omitempty"`
	Steps    int           `json:"steps,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	Step      string        `json:"step"`
	Iteration int           `json:"iteration"` // 1-based visit count of this step within the run
	Duration  time.Duration `json:"duration,omitempty"`
	Changed   []string      `json:"changed,omitempty"` // Fields present in the step's update
	State     State         `json:"-"`                 // Post-merge state (leave only)
	Err       error         `json:"-"`
}

// RouteEvent is emitted when a conditional edge selects a successor.
type RouteEvent struct {
	EventBase
	From  string `json:"from"`
	Route Route  `json:"route"`
	To    string `json:"to"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRunStart  func(context.Context, *RunEvent)
	OnRunEnd    func(context.Context, *RunEvent)
	OnStepEnter func(context.Context, *StepEvent)
	OnStepLeave func(context.Context, *StepEvent)
	OnRoute     func(context.Context, *RouteEvent)
}

// ChainHooks combines several hook sets; callbacks run in argument order.
func ChainHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range sets {
		out.OnRunStart = chain(out.OnRunStart, h.OnRunStart)
		out.OnRunEnd = chain(out.OnRunEnd, h.OnRunEnd)
		out.OnStepEnter = chain(out.OnStepEnter, h.OnStepEnter)
		out.OnStepLeave = chain(out.OnStepLeave, h.OnStepLeave)
		out.OnRoute = chain(out.OnRoute, h.OnRoute)
	}
	return out
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}

type runIDKey struct{}

// WithRunID attaches a run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFrom extracts the run identifier from the context, if any.
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
