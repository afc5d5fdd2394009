// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Pipeline metrics (items fetched, summarized, source fetch duration)
//   - Vector reconciliation metrics
//   - Database connection pool metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the daemon's /metrics endpoint.
//
// Example usage:
//
//	import "prismis/internal/observability/metrics"
//
//	func processSource(sourceID string) {
//	    start := time.Now()
//	    // ... fetch and analyze items ...
//	    count := 10
//
//	    metrics.RecordItemsFetched(sourceID, count)
//	    metrics.RecordSourceFetch(sourceID, time.Since(start))
//	}
package metrics
