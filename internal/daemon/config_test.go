package daemon

import (
	"log/slog"
	"os"
	"testing"
)

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()

	if cfg.HealthPort != 9091 {
		t.Errorf("HealthPort = %d, want 9091", cfg.HealthPort)
	}
	if cfg.SourceWorkers != 4 {
		t.Errorf("SourceWorkers = %d, want 4", cfg.SourceWorkers)
	}
}

func TestRuntimeConfig_Validate(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults = %v, want nil", err)
	}

	bad := RuntimeConfig{HealthPort: 80, SourceWorkers: 0}
	if err := bad.Validate(); err == nil {
		t.Fatal("Validate() on out-of-range config = nil, want error")
	}
}

// globalTestMetrics is shared across tests to avoid duplicate
// Prometheus registration errors; in production metrics are created
// once at startup.
var globalTestMetrics = NewCycleMetrics()

func TestLoadRuntimeConfigFromEnv_FallsBackOnInvalidValue(t *testing.T) {
	t.Setenv("PRISMIS_HEALTH_PORT", "80")
	t.Setenv("PRISMIS_SOURCE_WORKERS", "4")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := LoadRuntimeConfigFromEnv(logger, globalTestMetrics)

	if cfg.HealthPort != DefaultRuntimeConfig().HealthPort {
		t.Errorf("HealthPort = %d, want fallback to default after rejecting privileged port", cfg.HealthPort)
	}
	if cfg.SourceWorkers != 4 {
		t.Errorf("SourceWorkers = %d, want 4 (valid, no fallback)", cfg.SourceWorkers)
	}
}

func TestLoadRuntimeConfigFromEnv_HonorsValidValues(t *testing.T) {
	t.Setenv("PRISMIS_HEALTH_PORT", "9200")
	t.Setenv("PRISMIS_SOURCE_WORKERS", "8")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := LoadRuntimeConfigFromEnv(logger, globalTestMetrics)

	if cfg.HealthPort != 9200 {
		t.Errorf("HealthPort = %d, want 9200", cfg.HealthPort)
	}
	if cfg.SourceWorkers != 8 {
		t.Errorf("SourceWorkers = %d, want 8", cfg.SourceWorkers)
	}
}
