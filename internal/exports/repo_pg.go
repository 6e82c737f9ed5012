package exports

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts an export record.
func (r *PGRepo) Create(ctx context.Context, export Export) error {
	const query = `
INSERT INTO exports (
    id, user_id, supplier_id, storage_path, is_auto, is_ready, is_send, created_at, ready_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		export.ID,
		export.UserID,
		export.SupplierID,
		export.StoragePath,
		export.IsAuto,
		export.IsReady,
		export.IsSend,
		export.CreatedAt,
		export.ReadyAt,
	)
	return err
}

// GetByID returns an export by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, exportID string) (Export, error) {
	export, err := r.GetAny(ctx, exportID)
	if err != nil {
		return Export{}, err
	}
	if export.UserID != userID {
		return Export{}, ErrForbidden
	}
	return export, nil
}

// GetAny returns an export by ID without owner scoping.
func (r *PGRepo) GetAny(ctx context.Context, exportID string) (Export, error) {
	const query = `
SELECT id, user_id, supplier_id, storage_path, is_auto, is_ready, is_send, created_at, ready_at
FROM exports
WHERE id = $1
LIMIT 1`
	var export Export
	err := r.DB.QueryRowContext(ctx, query, exportID).Scan(
		&export.ID,
		&export.UserID,
		&export.SupplierID,
		&export.StoragePath,
		&export.IsAuto,
		&export.IsReady,
		&export.IsSend,
		&export.CreatedAt,
		&export.ReadyAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Export{}, ErrNotFound
		}
		return Export{}, err
	}
	return export, nil
}

// ListByUser lists exports ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Export, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, supplier_id, storage_path, is_auto, is_ready, is_send, created_at, ready_at
FROM exports
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		var export Export
		if err := rows.Scan(
			&export.ID,
			&export.UserID,
			&export.SupplierID,
			&export.StoragePath,
			&export.IsAuto,
			&export.IsReady,
			&export.IsSend,
			&export.CreatedAt,
			&export.ReadyAt,
		); err != nil {
			return nil, err
		}
		out = append(out, export)
	}
	return out, rows.Err()
}

// MarkReady transitions a record to ready exactly once.
func (r *PGRepo) MarkReady(ctx context.Context, exportID, storagePath string, readyAt time.Time) error {
	const query = `
UPDATE exports
SET storage_path = $2, is_ready = TRUE, ready_at = $3
WHERE id = $1 AND is_ready = FALSE`
	res, err := r.DB.ExecContext(ctx, query, exportID, storagePath, readyAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		export, getErr := r.GetAny(ctx, exportID)
		if getErr != nil {
			return getErr
		}
		if export.IsReady {
			return ErrAlreadyReady
		}
		return ErrNotFound
	}
	return nil
}

// MarkSent flags a record as delivered.
func (r *PGRepo) MarkSent(ctx context.Context, exportID string) error {
	const query = `UPDATE exports SET is_send = TRUE WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, exportID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
