// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats
//   - Cycle ID propagation
//   - Context-aware logging
//   - Configurable log levels
//
// Example usage:
//
//	import "prismis/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("daemon started", slog.String("version", "1.0"))
//	}
//
//	func runCycle(ctx context.Context) {
//	    logger := logging.WithCycleID(ctx, slog.Default())
//	    logger.Info("cycle started")
//	}
package logging
