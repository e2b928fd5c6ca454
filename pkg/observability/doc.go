/*
Package observability turns session lifecycle events into Prometheus metrics
and structured log lines.

Both are exposed as domain.LifecycleHooks, so they compose with any caller
hooks through LifecycleHooks.Merge:

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
*/
package observability
