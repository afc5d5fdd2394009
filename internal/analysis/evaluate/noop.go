package evaluate

import (
	"context"

	"prismis/internal/domain/entity"
)

// NoOp always assigns medium priority with no matched interests. Useful
// for local development and for tests that need a deterministic
// Evaluator.
type NoOp struct{}

func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) Evaluate(_ context.Context, _ Input) (Output, error) {
	return Output{
		Priority:         entity.PriorityMedium,
		MatchedInterests: []string{},
	}, nil
}
