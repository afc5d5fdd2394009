package repository

import "context"

// Store is the aggregate persistence contract the pipeline depends on. A
// concrete Store owns a single-writer database handle: mutating calls are
// serialized, read calls may proceed concurrently, and schema creation via
// Init is idempotent.
type Store interface {
	SourceRepository
	ContentRepository
	VectorRepository

	Init(ctx context.Context) error
	Close() error
}
