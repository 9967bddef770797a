/*
Package observability binds engine lifecycle hooks to monitoring backends.

Metrics records Prometheus counters and histograms for runs, steps and routes.
LoggingHooks emits one structured log record per lifecycle event.
Both return domain.LifecycleHooks and can be combined with domain.ChainHooks.
*/
package observability
