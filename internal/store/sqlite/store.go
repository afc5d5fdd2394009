package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// defaultEmbeddingDimension matches OpenAI's text-embedding-3-small, the
// default embedder provider. A Store configured for a different
// embedding model must pass that model's dimension to New instead.
const defaultEmbeddingDimension = 1536

// Store implements repository.Store over a single SQLite file: it
// embeds the three repository implementations so the pipeline can depend
// on one handle for sources, content items, and vectors alike.
type Store struct {
	db *sql.DB
	sourceRepo
	contentRepo
	vectorRepo
	embeddingDimension int
}

// New wires a Store around an already-open database handle. Init must be
// called once before use.
func New(db *sql.DB, embeddingDimension int) *Store {
	if embeddingDimension <= 0 {
		embeddingDimension = defaultEmbeddingDimension
	}
	return &Store{
		db:                 db,
		sourceRepo:         sourceRepo{db: db},
		contentRepo:        contentRepo{db: db},
		vectorRepo:         vectorRepo{db: db},
		embeddingDimension: embeddingDimension,
	}
}

// Init creates the schema if it doesn't already exist. Safe to call on
// every startup.
func (s *Store) Init(ctx context.Context) error {
	if err := MigrateUp(s.db, s.embeddingDimension); err != nil {
		return fmt.Errorf("Init: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
