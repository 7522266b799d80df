/*
Package observability exposes wizard lifecycle events as Prometheus metrics.

Metrics.Hooks returns domain.LifecycleHooks that the Engine invokes when a step is
saved, when a submission is rejected, and when a wizard completes. Register the
collectors on any prometheus.Registerer and serve them with promhttp.
*/
package observability
