// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Recommendation serving metrics (items served, assembly latency)
//   - Model lifecycle metrics (rebuild attempts, duration, fit quality)
//   - Similarity provider and database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "cinerec/internal/observability/metrics"
//
//	func serveRecommendations(tier string) {
//	    start := time.Now()
//	    // ... assemble the list ...
//	    metrics.RecordRecommendationsServed(tier, perStrategy, time.Since(start))
//	}
package metrics
