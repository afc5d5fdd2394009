package evaluate

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"prismis/internal/domain/entity"
)

// MetricsRecorder abstracts evaluator observability.
type MetricsRecorder interface {
	RecordDuration(duration time.Duration)
	RecordPriority(priority entity.Priority)
	RecordCoercion()
	RecordParseFailure()
}

type PrometheusMetrics struct {
	durationHistogram prometheus.Histogram
	priorityCounter   *prometheus.CounterVec
	coercionCounter   prometheus.Counter
	parseFailures     prometheus.Counter
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			durationHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "prismis_evaluate_duration_seconds",
				Help:    "Time taken to evaluate one item's priority and matched interests",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}),
			priorityCounter: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "prismis_evaluate_priority_total",
				Help: "Count of items evaluated per final (post-coercion) priority",
			}, []string{"priority"}),
			coercionCounter: promauto.NewCounter(prometheus.CounterOpts{
				Name: "prismis_evaluate_priority_coerced_total",
				Help: "Total number of evaluator responses whose raw priority value needed coercion to medium",
			}),
			parseFailures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "prismis_evaluate_parse_failures_total",
				Help: "Total number of evaluator responses that failed to parse as the expected JSON envelope",
			}),
		}
	})
	return prometheusMetricsInstance
}

func (p *PrometheusMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}

func (p *PrometheusMetrics) RecordPriority(priority entity.Priority) {
	p.priorityCounter.WithLabelValues(string(priority)).Inc()
}

func (p *PrometheusMetrics) RecordCoercion() {
	p.coercionCounter.Inc()
}

func (p *PrometheusMetrics) RecordParseFailure() {
	p.parseFailures.Inc()
}
