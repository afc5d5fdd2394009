package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"prismis/internal/domain/entity"
)

// contentRepo implements repository.ContentRepository over the
// content_items table.
type contentRepo struct {
	db *sql.DB
}

func (c *contentRepo) Exists(ctx context.Context, sourceID, externalID string) (bool, error) {
	const query = `SELECT 1 FROM content_items WHERE source_id = ? AND external_id = ? LIMIT 1`
	var flag int
	err := c.db.QueryRowContext(ctx, query, sourceID, externalID).Scan(&flag)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return true, nil
}

func (c *contentRepo) Insert(ctx context.Context, item *entity.ContentItem) (string, error) {
	analysisJSON, err := json.Marshal(item.Analysis)
	if err != nil {
		return "", fmt.Errorf("Insert: marshal analysis: %w", err)
	}

	id := item.ID
	if id == "" {
		id = uuid.New().String()
	}
	fetchedAt := item.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO content_items
(id, source_id, external_id, title, url, content, summary, reading_summary, analysis_json, priority, published_at, fetched_at, read, favorited, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = c.db.ExecContext(ctx, query,
		id, item.SourceID, item.ExternalID, item.Title, item.URL,
		item.Content, item.Summary, item.ReadingSummary, string(analysisJSON),
		string(item.Priority), item.PublishedAt, fetchedAt, item.Read, item.Favorited, item.Notes,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return "", entity.ErrDuplicate
		}
		return "", fmt.Errorf("Insert: %w", err)
	}
	return id, nil
}

func (c *contentRepo) GetItem(ctx context.Context, id string) (*entity.ContentItem, error) {
	const query = `
SELECT id, source_id, external_id, title, url, content, summary, reading_summary,
       analysis_json, priority, published_at, fetched_at, read, favorited, notes
FROM content_items
WHERE id = ?`
	var item entity.ContentItem
	var priority string
	var analysisJSON string
	var publishedAt sql.NullTime

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.SourceID, &item.ExternalID, &item.Title, &item.URL,
		&item.Content, &item.Summary, &item.ReadingSummary, &analysisJSON,
		&priority, &publishedAt, &item.FetchedAt, &item.Read, &item.Favorited, &item.Notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	item.Priority = entity.Priority(priority)
	if publishedAt.Valid {
		t := publishedAt.Time
		item.PublishedAt = &t
	}
	if err := json.Unmarshal([]byte(analysisJSON), &item.Analysis); err != nil {
		return nil, fmt.Errorf("Get: unmarshal analysis: %w", err)
	}
	return &item, nil
}

// LatestContentForSource returns the content of sourceID's most
// recently fetched item, ordered by fetched_at. A source with no
// items yet reports found=false rather than an error.
func (c *contentRepo) LatestContentForSource(ctx context.Context, sourceID string) (string, bool, error) {
	const query = `
SELECT content FROM content_items
WHERE source_id = ?
ORDER BY fetched_at DESC
LIMIT 1`
	var content string
	err := c.db.QueryRowContext(ctx, query, sourceID).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("LatestContentForSource: %w", err)
	}
	return content, true, nil
}

// Prune deletes items matching priority (and, if olderThan is set, older
// than that fetched_at timestamp too) along with their vectors, in one
// transaction — the orphan a Prune would otherwise leave behind is
// reconciled for free by the same tx instead of waiting for the next
// cycle's CleanupOrphanedVectors pass.
func (c *contentRepo) Prune(ctx context.Context, priority entity.Priority, olderThan *time.Time) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("Prune: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT id FROM content_items WHERE priority = ?`
	args := []any{string(priority)}
	if olderThan != nil {
		query += ` AND fetched_at < ?`
		args = append(args, *olderThan)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("Prune: QueryContext: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("Prune: Scan: %w", err)
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("Prune: rows.Err: %w", err)
	}

	for _, id := range ids {
		if err := deleteVectorTx(ctx, tx, id); err != nil {
			return 0, fmt.Errorf("Prune: delete vector for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM content_items WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("Prune: delete content_item %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("Prune: Commit: %w", err)
	}
	return len(ids), nil
}
