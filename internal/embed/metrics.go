package embed

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder abstracts embedder observability.
type MetricsRecorder interface {
	RecordPending(delta float64)
	RecordProcessed(success bool)
	RecordDuration(duration time.Duration)
}

type PrometheusMetrics struct {
	pendingGauge      prometheus.Gauge
	processedCounter  *prometheus.CounterVec
	durationHistogram prometheus.Histogram
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			pendingGauge: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "prismis_embedding_pending",
				Help: "Number of embedding operations currently in flight",
			}),
			processedCounter: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "prismis_embedding_processed_total",
				Help: "Total embeddings processed, labeled by outcome",
			}, []string{"status"}),
			durationHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "prismis_embedding_duration_seconds",
				Help:    "Time taken to generate one item's embedding",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
			}),
		}
	})
	return prometheusMetricsInstance
}

func (p *PrometheusMetrics) RecordPending(delta float64) {
	p.pendingGauge.Add(delta)
}

func (p *PrometheusMetrics) RecordProcessed(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.processedCounter.WithLabelValues(status).Inc()
}

func (p *PrometheusMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}
