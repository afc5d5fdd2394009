// Package entity defines the core domain entities for the ingestion and
// analysis pipeline: sources, the content items derived from them, the
// vectors that back semantic search, and the transient records a fetcher
// produces before analysis.
package entity

import "time"

// SourceType enumerates the four kinds of poll target the pipeline knows
// how to fetch.
type SourceType string

const (
	SourceTypeFeed  SourceType = "feed"
	SourceTypeForum SourceType = "forum"
	SourceTypeVideo SourceType = "video"
	SourceTypeFile  SourceType = "file"
)

// ValidSourceType reports whether t is one of the four recognized types.
func ValidSourceType(t SourceType) bool {
	switch t {
	case SourceTypeFeed, SourceTypeForum, SourceTypeVideo, SourceTypeFile:
		return true
	default:
		return false
	}
}

// Source is a configured poll target. The pair (URL, Type) is unique;
// ErrorCount resets to zero on any successful fetch and deactivation is
// caller-driven, never automatic.
type Source struct {
	ID            string
	URL           string
	Type          SourceType
	Name          string
	Active        bool
	ErrorCount    int
	LastError     string
	LastFetchedAt *time.Time
}

// Validate checks that the source's type is one of the four recognized
// values and that its URL is non-empty. It does not perform any network
// probing; that is the Source Validator's job.
func (s *Source) Validate() error {
	if !ValidSourceType(s.Type) {
		return &ValidationError{Field: "type", Message: "unknown source type: " + string(s.Type)}
	}
	if s.URL == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}
	return nil
}
