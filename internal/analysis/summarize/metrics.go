package summarize

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder abstracts summarizer observability so it can be
// swapped for a test double instead of hitting the default Prometheus
// registry.
type MetricsRecorder interface {
	RecordSummaryLength(length int)
	RecordDuration(duration time.Duration)
	RecordParseFailure()
}

// PrometheusMetrics implements MetricsRecorder using the default
// Prometheus registry.
type PrometheusMetrics struct {
	lengthHistogram   prometheus.Histogram
	durationHistogram prometheus.Histogram
	parseFailures     prometheus.Counter
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		return promauto.NewHistogram(opts)
	}
	return h
}

func getOrCreateCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
		return promauto.NewCounter(opts)
	}
	return c
}

// NewPrometheusMetrics returns the process-wide summarizer metrics
// recorder, creating it on first use.
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			lengthHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "prismis_summary_length_characters",
				Help:    "Distribution of summary lengths in characters",
				Buckets: []float64{50, 100, 200, 300, 400, 500},
			}),
			durationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "prismis_summarize_duration_seconds",
				Help:    "Time taken to produce a structured analysis via an LLM provider",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}),
			parseFailures: getOrCreateCounter(prometheus.CounterOpts{
				Name: "prismis_summarize_parse_failures_total",
				Help: "Total number of summarizer responses that failed to parse as the expected JSON envelope",
			}),
		}
	})
	return prometheusMetricsInstance
}

func (p *PrometheusMetrics) RecordSummaryLength(length int) {
	p.lengthHistogram.Observe(float64(length))
}

func (p *PrometheusMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}

func (p *PrometheusMetrics) RecordParseFailure() {
	p.parseFailures.Inc()
}
