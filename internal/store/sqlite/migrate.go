package sqlite

import (
	"database/sql"
	"fmt"
)

// MigrateUp creates the schema if absent. It is idempotent: running it
// against an already-migrated database is a no-op. dimension fixes the
// width of the vec0 virtual table and must match every vector the
// Embedder ever writes.
func MigrateUp(db *sql.DB, dimension int) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			id              TEXT PRIMARY KEY,
			url             TEXT NOT NULL,
			type            TEXT NOT NULL,
			name            TEXT NOT NULL,
			active          INTEGER NOT NULL DEFAULT 1,
			error_count     INTEGER NOT NULL DEFAULT 0,
			last_error      TEXT,
			last_fetched_at TIMESTAMP,
			UNIQUE(url, type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sources_active ON sources(active)`,
		`CREATE TABLE IF NOT EXISTS content_items (
			id              TEXT PRIMARY KEY,
			source_id       TEXT NOT NULL REFERENCES sources(id),
			external_id     TEXT NOT NULL,
			title           TEXT NOT NULL,
			url             TEXT NOT NULL,
			content         TEXT NOT NULL DEFAULT '',
			summary         TEXT NOT NULL DEFAULT '',
			reading_summary TEXT NOT NULL DEFAULT '',
			analysis_json   TEXT NOT NULL DEFAULT '{}',
			priority        TEXT NOT NULL,
			published_at    TIMESTAMP,
			fetched_at      TIMESTAMP NOT NULL,
			read            INTEGER NOT NULL DEFAULT 0,
			favorited       INTEGER NOT NULL DEFAULT 0,
			notes           TEXT NOT NULL DEFAULT '',
			UNIQUE(source_id, external_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_content_items_source_id ON content_items(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_content_items_priority_published ON content_items(priority, published_at DESC)`,
		// vector_index maps a ContentItem's TEXT id to the integer rowid
		// vec0 requires; vec0 has no notion of a foreign key, so orphans
		// are reconciled by CleanupOrphanedVectors rather than prevented.
		`CREATE TABLE IF NOT EXISTS vector_index (
			vec_rowid  INTEGER PRIMARY KEY AUTOINCREMENT,
			content_id TEXT NOT NULL UNIQUE
		)`,
		fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS vec_items USING vec0(embedding float[%d])`, dimension),
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
