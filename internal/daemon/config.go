package daemon

import (
	"fmt"
	"log/slog"

	"prismis/internal/config"
)

// RuntimeConfig holds the daemon's own operational knobs: the ones that
// govern the process itself rather than the pipeline (those live in
// config.toml's [daemon] table and are reloaded every cycle instead).
type RuntimeConfig struct {
	// HealthPort is the port the liveness/readiness HTTP server listens
	// on. Range: 1024-65535.
	HealthPort int

	// SourceWorkers bounds how many sources are fetched concurrently in
	// one cycle. Range: 1-50.
	SourceWorkers int
}

// DefaultRuntimeConfig mirrors spec.md §4.G's stated default worker pool
// size of 4, with a health port consistent with the teacher's worker
// component.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		HealthPort:    9091,
		SourceWorkers: 4,
	}
}

// Validate checks configuration values are within their documented
// ranges.
func (c *RuntimeConfig) Validate() error {
	var errs []error
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.SourceWorkers, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("source workers: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadRuntimeConfigFromEnv loads the daemon's own operational settings
// from the environment, failing open to DefaultRuntimeConfig on any
// invalid value rather than refusing to start — an out-of-range
// PRISMIS_HEALTH_PORT should not be a ConfigError the way a malformed
// config.toml is.
//
// Environment variables:
//   - PRISMIS_HEALTH_PORT: integer 1024-65535 (default 9091)
//   - PRISMIS_SOURCE_WORKERS: integer 1-50 (default 4)
func LoadRuntimeConfigFromEnv(logger *slog.Logger, metrics *CycleMetrics) RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	fallbackApplied := false

	result := config.LoadEnvInt("PRISMIS_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("configuration fallback applied", slog.String("field", "HealthPort"), slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("PRISMIS_SOURCE_WORKERS", cfg.SourceWorkers, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.SourceWorkers = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("source_workers")
		metrics.RecordFallback("source_workers", "default")
		for _, warning := range result.Warnings {
			logger.Warn("configuration fallback applied", slog.String("field", "SourceWorkers"), slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return cfg
}
