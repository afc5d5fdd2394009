package entity

// VectorRow is one row of the semantic-vector side-index. ContentID must
// resolve to a live ContentItem; because the vector index is backed by a
// virtual table it lacks foreign-key cascade, so orphan rows are cleaned
// up by Store.CleanupOrphanedVectors rather than prevented at write time.
type VectorRow struct {
	ContentID string
	Vector    []float32
}
