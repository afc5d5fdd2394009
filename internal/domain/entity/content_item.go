package entity

import "time"

// Priority is the ordinal ranking the Evaluator assigns to a ContentItem.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = "none"
)

// ValidPriority reports whether p is one of the four recognized levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow, PriorityNone:
		return true
	default:
		return false
	}
}

// DiffStats describes a unified diff between the current and previously
// seen body of a tracked file source. Present only on file-source items
// whose content changed since the prior cycle.
type DiffStats struct {
	UnifiedDiff  string `json:"unified_diff"`
	AddedLines   int    `json:"added_lines"`
	RemovedLines int    `json:"removed_lines"`
	ChangedLines int    `json:"changed_lines"`
}

// Analysis is the structured output of the two-stage LLM pipeline: the
// Summarizer fills Summary/ReadingSummary/AlphaInsights/Patterns/Entities,
// the Evaluator fills MatchedInterests/Reasoning, and the pipeline sets
// Priority from the Evaluator's normalized output.
type Analysis struct {
	AlphaInsights    []string       `json:"alpha_insights"`
	Patterns         []string       `json:"patterns"`
	Entities         []string       `json:"entities"`
	Metrics          map[string]any `json:"metrics,omitempty"`
	MatchedInterests []string       `json:"matched_interests"`
	Reasoning        string         `json:"reasoning,omitempty"`
	Diff             *DiffStats     `json:"diff,omitempty"`
}

// ContentItem is the persisted, analyzed unit shown to readers. The pair
// (SourceID, ExternalID) is unique; Priority is set exactly once at
// ingestion and FetchedAt is always set by the core, never the fetcher.
type ContentItem struct {
	ID             string
	SourceID       string
	ExternalID     string
	Title          string
	URL            string
	Content        string
	Summary        string
	ReadingSummary string
	Analysis       Analysis
	Priority       Priority
	PublishedAt    *time.Time
	FetchedAt      time.Time
	Read           bool
	Favorited      bool
	Notes          string
}
