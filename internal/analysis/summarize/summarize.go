// Package summarize implements the Summarizer component: given an item's
// content, it produces structured analysis (summary, reading summary,
// alpha insights, patterns, entities) via a configured LLM provider.
package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"prismis/internal/domain/entity"
)

const (
	maxSummaryChars  = 400
	maxAlphaInsights = 3
	maxEntities      = 5
)

// Input is what the summarizer needs to analyze one item. SourceType
// lets the prompt adapt its framing (a forum thread reads differently
// from an RSS article) without the caller needing provider knowledge.
type Input struct {
	Title      string
	URL        string
	Content    string
	SourceType entity.SourceType
}

// Output is the Summarizer's structured result, validated and
// length-trimmed before it ever reaches the caller.
type Output struct {
	Summary        string
	ReadingSummary string
	AlphaInsights  []string
	Patterns       []string
	Entities       []string
}

// Summarizer produces structured analysis for one item. Implementations
// must return AnalysisError on a parse failure rather than a bare error,
// so the pipeline can distinguish "skip this item" from "retry later".
type Summarizer interface {
	Summarize(ctx context.Context, in Input) (Output, error)
}

// Sentinel errors surfaced to callers.
var (
	ErrEmptyResponse = errors.New("summarizer returned an empty response")
	ErrMalformedJSON = errors.New("summarizer response is not valid JSON")
)

// AnalysisError wraps a failure to produce or parse a structured
// analysis. The pipeline catches it, logs, and skips the item without
// marking the source as failing.
type AnalysisError struct {
	Provider string
	Cause    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("summarize (%s): %v", e.Provider, e.Cause)
}

func (e *AnalysisError) Unwrap() error { return e.Cause }

// ConfigError is raised at construction time when a provider's required
// configuration (typically an API key dereferenced from an env:VAR
// entry) is missing. Construction fails fast rather than deferring the
// failure to the first Summarize call.
type ConfigError struct {
	Field string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("summarizer config %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("summarizer config %s is required", e.Field)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// rawResponse is the JSON envelope the system prompt instructs the
// model to emit. Fields are trimmed and capped by normalize before
// becoming an Output.
type rawResponse struct {
	Summary        string   `json:"summary"`
	ReadingSummary string   `json:"reading_summary"`
	AlphaInsights  []string `json:"alpha_insights"`
	Patterns       []string `json:"patterns"`
	Entities       []string `json:"entities"`
}

// parseResponse decodes the model's JSON text into an Output, tolerating
// a response wrapped in a markdown code fence (some providers add one
// despite instructions not to).
func parseResponse(text string) (Output, error) {
	text = stripCodeFence(text)
	if strings.TrimSpace(text) == "" {
		return Output{}, ErrEmptyResponse
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	return normalize(raw), nil
}

// normalize enforces the length and count caps the system prompt asks
// for but cannot strictly guarantee: the model is a suggestion, not a
// contract.
func normalize(raw rawResponse) Output {
	out := Output{
		Summary:        truncateRunes(raw.Summary, maxSummaryChars),
		ReadingSummary: raw.ReadingSummary,
		AlphaInsights:  capStrings(raw.AlphaInsights, maxAlphaInsights),
		Patterns:       raw.Patterns,
		Entities:       capStrings(raw.Entities, maxEntities),
	}
	if out.AlphaInsights == nil {
		out.AlphaInsights = []string{}
	}
	if out.Patterns == nil {
		out.Patterns = []string{}
	}
	if out.Entities == nil {
		out.Entities = []string{}
	}
	return out
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func capStrings(items []string, max int) []string {
	if len(items) <= max {
		return items
	}
	return items[:max]
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// systemPrompt is shared by every provider implementation so the output
// contract stays identical regardless of which model answers it.
const systemPrompt = `You analyze one piece of content and respond with a single JSON object and nothing else — no markdown fence, no commentary.

Fields:
- "summary": a plain-text summary, at most 400 characters.
- "reading_summary": a markdown summary targeting 10-15% of the source length, for a reader who wants more than the short summary but not the full text.
- "alpha_insights": at most 3 sharp, non-obvious takeaways a busy reader would want flagged. Omit if there are none.
- "patterns": a list of recurring themes or structural observations about the content. May be empty.
- "entities": exactly the 5 most searchable proper nouns in the content (people, organizations, products, places). Never file names. Never generic nouns. Fewer than 5 if the content doesn't contain that many.

Respond only with the JSON object.`
