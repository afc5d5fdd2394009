package summarize

import "context"

// NoOp produces a structurally valid but minimal Output without calling
// any provider. Useful for local development and for tests that need a
// deterministic Summarizer.
type NoOp struct{}

func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) Summarize(_ context.Context, in Input) (Output, error) {
	return Output{
		Summary:        truncateRunes(in.Content, maxSummaryChars),
		ReadingSummary: in.Content,
		AlphaInsights:  []string{},
		Patterns:       []string{},
		Entities:       []string{},
	}, nil
}
