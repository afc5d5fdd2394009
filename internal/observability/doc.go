// Package observability provides production-grade observability infrastructure
// consisting of structured logging and Prometheus metrics. It has no
// tracing or profiling support.
//
// This package centralizes observability concerns to enable:
//   - Structured logging with context propagation
//   - Prometheus metrics for monitoring
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "prismis/internal/observability/logging"
//	    "prismis/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("daemon started")
//
//	    metrics.RecordItemsFetched("example-source", 10)
//	}
package observability
