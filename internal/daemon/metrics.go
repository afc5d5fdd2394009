package daemon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"prismis/internal/config"
)

// CycleMetrics tracks the pipeline's per-cycle behavior: how often a
// cycle runs, how long it takes, how many items it produces, and when
// it last succeeded. It embeds the shared config metrics so its own
// runtime configuration fallbacks show up next to the cycle counters.
type CycleMetrics struct {
	*config.ConfigMetrics

	CycleRunsTotal       *prometheus.CounterVec
	CycleDurationSeconds prometheus.Histogram
	ItemsInsertedTotal   prometheus.Counter
	LastSuccessTimestamp prometheus.Gauge
}

// NewCycleMetrics registers the daemon's Prometheus metrics. Call once
// per process.
func NewCycleMetrics() *CycleMetrics {
	return &CycleMetrics{
		ConfigMetrics: config.NewConfigMetrics("daemon"),

		CycleRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prismis_cycle_runs_total",
			Help: "Total number of pipeline cycles, labeled by outcome (success, error).",
		}, []string{"status"}),

		CycleDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "prismis_cycle_duration_seconds",
			Help:    "Wall-clock duration of a pipeline cycle.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),

		ItemsInsertedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "prismis_cycle_items_inserted_total",
			Help: "Total number of content items inserted across all cycles.",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "prismis_cycle_last_success_timestamp",
			Help: "Unix timestamp of the last cycle that completed without error.",
		}),
	}
}

// RecordCycleRun increments the run counter for the given outcome
// ("success" or "error").
func (m *CycleMetrics) RecordCycleRun(status string) {
	m.CycleRunsTotal.WithLabelValues(status).Inc()
}

// RecordCycleDuration records how long a cycle took, in seconds.
func (m *CycleMetrics) RecordCycleDuration(seconds float64) {
	m.CycleDurationSeconds.Observe(seconds)
}

// RecordItemsInserted adds count to the running total of items
// inserted by the pipeline.
func (m *CycleMetrics) RecordItemsInserted(count int) {
	m.ItemsInsertedTotal.Add(float64(count))
}

// RecordLastSuccess marks the current time as the last successful
// cycle.
func (m *CycleMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}

// MustRegister exists for call-site compatibility with code that
// expects an explicit registration step. promauto registers each
// metric at construction time, so this is a no-op.
func (m *CycleMetrics) MustRegister() {}
