package observability

import (
	"context"

	"github.com/aretw0/trendline/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "trendline"

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	stepVisits   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	routes       *prometheus.CounterVec
}

// MetricsOption configures Metrics.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	registerer prometheus.Registerer
}

// WithRegisterer registers the collectors on r instead of the default registry.
func WithRegisterer(r prometheus.Registerer) MetricsOption {
	return func(c *metricsConfig) {
		c.registerer = r
	}
}

// NewMetrics creates and registers the collectors.
// It returns an error if they are already registered on the target registry.
func NewMetrics(opts ...MetricsOption) (*Metrics, error) {
	cfg := metricsConfig{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of finished runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of complete runs",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		stepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_visits_total",
				Help:      "Total number of step executions",
			},
			[]string{"step"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of step executions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"step", "outcome"},
		),
		routes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "routes_total",
				Help:      "Total number of conditional routing decisions",
			},
			[]string{"from", "route"},
		),
	}

	for _, c := range []prometheus.Collector{m.runs, m.runDuration, m.stepVisits, m.stepDuration, m.routes} {
		if err := cfg.registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			m.stepVisits.WithLabelValues(e.Step).Inc()
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			m.stepDuration.WithLabelValues(e.Step, outcome(e.Err)).Observe(e.Duration.Seconds())
		},
		OnRoute: func(ctx context.Context, e *domain.RouteEvent) {
			m.routes.WithLabelValues(e.From, string(e.Route)).Inc()
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			m.runs.WithLabelValues(outcome(e.Err)).Inc()
			m.runDuration.Observe(e.Duration.Seconds())
		},
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
