package embed

import "context"

// NoOp returns a fixed zero vector without calling any provider. Useful
// for local development and deterministic tests.
type NoOp struct {
	Dimension int
}

func NewNoOp(dimension int) *NoOp {
	return &NoOp{Dimension: dimension}
}

func (n *NoOp) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, n.Dimension), nil
}
