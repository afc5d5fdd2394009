package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// vectorRepo implements repository.VectorRepository over the vector_index
// mapping table and the vec_items virtual table it fronts.
type vectorRepo struct {
	db *sql.DB
}

// InsertVector upserts the vector for contentID: an existing row's vec0
// entry is replaced in place rather than leaking the old rowid as an
// orphan.
func (v *vectorRepo) InsertVector(ctx context.Context, contentID string, vector []float32) error {
	serialized, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return fmt.Errorf("InsertVector: serialize: %w", err)
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("InsertVector: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rowID int64
	err = tx.QueryRowContext(ctx, `SELECT vec_rowid FROM vector_index WHERE content_id = ?`, contentID).Scan(&rowID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `INSERT INTO vector_index (content_id) VALUES (?)`, contentID)
		if err != nil {
			return fmt.Errorf("InsertVector: insert mapping: %w", err)
		}
		rowID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("InsertVector: LastInsertId: %w", err)
		}
	case err != nil:
		return fmt.Errorf("InsertVector: lookup mapping: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `DELETE FROM vec_items WHERE rowid = ?`, rowID); err != nil {
			return fmt.Errorf("InsertVector: delete stale vector: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO vec_items (rowid, embedding) VALUES (?, ?)`, rowID, serialized); err != nil {
		return fmt.Errorf("InsertVector: insert vector: %w", err)
	}

	return tx.Commit()
}

func (v *vectorRepo) DeleteVector(ctx context.Context, contentID string) error {
	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("DeleteVector: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteVectorTx(ctx, tx, contentID); err != nil {
		return err
	}
	return tx.Commit()
}

// deleteVectorTx removes contentID's vector_index/vec_items rows, if any,
// within an already-open transaction. Shared by DeleteVector and the
// content repo's Prune so both paths stay in lockstep with the mapping
// table.
func deleteVectorTx(ctx context.Context, tx *sql.Tx, contentID string) error {
	var rowID int64
	err := tx.QueryRowContext(ctx, `SELECT vec_rowid FROM vector_index WHERE content_id = ?`, contentID).Scan(&rowID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleteVectorTx: lookup mapping: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM vec_items WHERE rowid = ?`, rowID); err != nil {
		return fmt.Errorf("deleteVectorTx: delete vector: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vector_index WHERE content_id = ?`, contentID); err != nil {
		return fmt.Errorf("deleteVectorTx: delete mapping: %w", err)
	}
	return nil
}

// CleanupOrphanedVectors deletes every vector_index/vec_items pair whose
// content_id no longer has a matching ContentItem, and returns the count
// removed.
func (v *vectorRepo) CleanupOrphanedVectors(ctx context.Context) (int, error) {
	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("CleanupOrphanedVectors: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const selectOrphans = `
SELECT vi.vec_rowid, vi.content_id
FROM vector_index vi
LEFT JOIN content_items ci ON ci.id = vi.content_id
WHERE ci.id IS NULL`

	rows, err := tx.QueryContext(ctx, selectOrphans)
	if err != nil {
		return 0, fmt.Errorf("CleanupOrphanedVectors: QueryContext: %w", err)
	}
	type orphan struct {
		rowID     int64
		contentID string
	}
	var orphans []orphan
	for rows.Next() {
		var o orphan
		if err := rows.Scan(&o.rowID, &o.contentID); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("CleanupOrphanedVectors: Scan: %w", err)
		}
		orphans = append(orphans, o)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("CleanupOrphanedVectors: rows.Err: %w", err)
	}

	for _, o := range orphans {
		if _, err := tx.ExecContext(ctx, `DELETE FROM vec_items WHERE rowid = ?`, o.rowID); err != nil {
			return 0, fmt.Errorf("CleanupOrphanedVectors: delete vector %d: %w", o.rowID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM vector_index WHERE content_id = ?`, o.contentID); err != nil {
			return 0, fmt.Errorf("CleanupOrphanedVectors: delete mapping %s: %w", o.contentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("CleanupOrphanedVectors: Commit: %w", err)
	}
	return len(orphans), nil
}
