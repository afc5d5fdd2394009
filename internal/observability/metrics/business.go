package metrics

import "time"

// RecordItemsFetched records the number of items fetched from a source.
func RecordItemsFetched(sourceID string, count int) {
	ItemsFetchedTotal.WithLabelValues(sourceID).Add(float64(count))
}

// RecordItemSummarized records the result of a summarization operation.
func RecordItemSummarized(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ItemsSummarizedTotal.WithLabelValues(status).Inc()
}

// RecordSummarizationDuration records the time taken to summarize an item.
func RecordSummarizationDuration(duration time.Duration) {
	SummarizationDuration.Observe(duration.Seconds())
}

// RecordSourceFetch records the duration of one source's fetch within a cycle.
func RecordSourceFetch(sourceID string, duration time.Duration) {
	SourceFetchDuration.WithLabelValues(sourceID).Observe(duration.Seconds())
}

// RecordSourceFetchError records a fetch failure for a source.
func RecordSourceFetchError(sourceID string) {
	SourceFetchErrors.WithLabelValues(sourceID).Inc()
}

// RecordVectorReconciliation records how many orphaned vectors a cleanup
// pass deleted.
func RecordVectorReconciliation(deleted int) {
	VectorReconciliationTotal.Add(float64(deleted))
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
