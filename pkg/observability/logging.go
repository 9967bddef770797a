package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/trendline/pkg/domain"
)

// LoggingHooks logs every lifecycle event with the run ID attached.
// Step and route events are logged at debug level, run boundaries at info.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.Info("run_start", "run_id", e.RunID, "query", e.Query)
		},
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("step_enter", "run_id", e.RunID, "step", e.Step, "iteration", e.Iteration)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			if e.Err != nil {
				logger.Warn("step_failed", "run_id", e.RunID, "step", e.Step, "err", e.Err)
				return
			}
			logger.Debug("step_leave", "run_id", e.RunID, "step", e.Step, "duration", e.Duration, "changed", e.Changed)
		},
		OnRoute: func(ctx context.Context, e *domain.RouteEvent) {
			logger.Debug("route", "run_id", e.RunID, "from", e.From, "route", e.Route, "to", e.To)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			if e.Err != nil {
				logger.Error("run_end", "run_id", e.RunID, "steps", e.Steps, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.Info("run_end", "run_id", e.RunID, "steps", e.Steps, "duration", e.Duration)
		},
	}
}
