// Package metrics provides real-time metrics collection for the gateway.
//
// It uses a channel-based event pipeline to asynchronously collect metrics
// about:
//   - Proxied request counts and breaker rejections per service
//   - Health probe counts and outcomes
//   - Response times with percentile calculations (P50, P95, P99)
//   - HTTP status code distribution
//   - Rolling-window availability (success ratio of recent outcomes)
//
// The collector runs in a dedicated goroutine and processes events without
// blocking the request path or the health monitor. Events are sent via a
// buffered channel with non-blocking semantics; under extreme load events
// are dropped instead of stalling callers.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventRequestProxied,
//		Service:    "transaction",
//		Duration:   150 * time.Millisecond,
//		StatusCode: 200,
//		Success:    true,
//	})
//
//	snapshot := collector.Snapshot()
//
// The availability figure is a display-only success ratio over a rolling
// window of recent outcomes; the availability gate never reads it.
package metrics
