// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics track source fetching and item analysis.
var (
	// ItemsFetchedTotal counts items fetched from each source.
	ItemsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prismis_items_fetched_total",
			Help: "Total number of items fetched from sources",
		},
		[]string{"source_id"},
	)

	// ItemsSummarizedTotal counts items summarized by status.
	ItemsSummarizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prismis_items_summarized_total",
			Help: "Total number of items summarized",
		},
		[]string{"status"},
	)

	// SummarizationDuration measures time to summarize an item.
	SummarizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prismis_summarization_duration_seconds",
			Help:    "Time taken to summarize an item",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// SourceFetchDuration measures time to fetch one source.
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prismis_source_fetch_duration_seconds",
			Help:    "Time taken to fetch a source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source_id"},
	)

	// SourceFetchErrors counts errors during source fetching.
	SourceFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prismis_source_fetch_errors_total",
			Help: "Total number of source fetch errors",
		},
		[]string{"source_id"},
	)

	// VectorReconciliationTotal counts orphaned vectors deleted per cleanup pass.
	VectorReconciliationTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prismis_vector_reconciliation_deleted_total",
			Help: "Total number of orphaned vectors deleted during cleanup",
		},
	)
)

// Database metrics track the sqlite connection pool.
var (
	// DBConnectionsActive tracks active database connections.
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prismis_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections.
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prismis_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
