package entity

import "time"

// FetchRecord is an item as produced by a fetcher before analysis. It is
// never persisted directly; the pipeline turns it into a ContentItem only
// after it survives the dedup and freshness gates and completes analysis.
type FetchRecord struct {
	ExternalID  string
	Title       string
	URL         string
	Content     string
	PublishedAt *time.Time
	Metrics     map[string]any
	Diff        *DiffStats
}
