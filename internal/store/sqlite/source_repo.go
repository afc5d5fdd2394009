package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"prismis/internal/domain/entity"
)

// sourceRepo implements repository.SourceRepository over the sources
// table. Embedded directly in Store rather than constructed separately,
// since every method needs only the shared *sql.DB handle.
type sourceRepo struct {
	db *sql.DB
}

func (s *sourceRepo) AddSource(ctx context.Context, url string, typ entity.SourceType, name string) (string, error) {
	if !entity.ValidSourceType(typ) {
		return "", entity.ErrInvalidType
	}

	id := uuid.New().String()
	const query = `INSERT INTO sources (id, url, type, name, active) VALUES (?, ?, ?, ?, 1)`
	_, err := s.db.ExecContext(ctx, query, id, url, string(typ), name)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return "", entity.ErrDuplicate
		}
		return "", fmt.Errorf("AddSource: %w", err)
	}
	return id, nil
}

func (s *sourceRepo) Get(ctx context.Context, id string) (*entity.Source, error) {
	const query = `
SELECT id, url, type, name, active, error_count, last_error, last_fetched_at
FROM sources
WHERE id = ?`
	var src entity.Source
	var typ string
	var lastError sql.NullString
	var lastFetchedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&src.ID, &src.URL, &typ, &src.Name, &src.Active,
		&src.ErrorCount, &lastError, &lastFetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	src.Type = entity.SourceType(typ)
	src.LastError = lastError.String
	if lastFetchedAt.Valid {
		src.LastFetchedAt = &lastFetchedAt.Time
	}
	return &src, nil
}

func (s *sourceRepo) ListSources(ctx context.Context, activeOnly bool) ([]*entity.Source, error) {
	query := `
SELECT id, url, type, name, active, error_count, last_error, last_fetched_at
FROM sources`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListSources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*entity.Source, 0, 16)
	for rows.Next() {
		var src entity.Source
		var typ string
		var lastError sql.NullString
		var lastFetchedAt sql.NullTime
		if err := rows.Scan(&src.ID, &src.URL, &typ, &src.Name, &src.Active,
			&src.ErrorCount, &lastError, &lastFetchedAt); err != nil {
			return nil, fmt.Errorf("ListSources: Scan: %w", err)
		}
		src.Type = entity.SourceType(typ)
		src.LastError = lastError.String
		if lastFetchedAt.Valid {
			src.LastFetchedAt = &lastFetchedAt.Time
		}
		sources = append(sources, &src)
	}
	return sources, rows.Err()
}

func (s *sourceRepo) MarkFetched(ctx context.Context, id string, ok bool, fetchErr error) error {
	var query string
	var args []any
	if ok {
		query = `UPDATE sources SET error_count = 0, last_error = NULL, last_fetched_at = ? WHERE id = ?`
		args = []any{time.Now().UTC(), id}
	} else {
		msg := ""
		if fetchErr != nil {
			msg = fetchErr.Error()
		}
		query = `UPDATE sources SET error_count = error_count + 1, last_error = ?, last_fetched_at = ? WHERE id = ?`
		args = []any{msg, time.Now().UTC(), id}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("MarkFetched: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkFetched: RowsAffected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (s *sourceRepo) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE sources SET active = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("SetActive: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetActive: RowsAffected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (s *sourceRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sources WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
