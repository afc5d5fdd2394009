package repository

import "context"

// VectorRepository manages the semantic-vector side-index. Because the
// backing virtual table has no foreign-key cascade to ContentItem,
// CleanupOrphanedVectors must be run after every cycle (and is safe to
// call at any other time, including concurrently with reads).
type VectorRepository interface {
	InsertVector(ctx context.Context, contentID string, vector []float32) error
	DeleteVector(ctx context.Context, contentID string) error
	CleanupOrphanedVectors(ctx context.Context) (int, error)
}
