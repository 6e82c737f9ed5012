package exports

import (
	"context"
	"time"
)

// Repo defines persistence operations for export records.
type Repo interface {
	Create(ctx context.Context, export Export) error
	GetByID(ctx context.Context, userID, exportID string) (Export, error)
	// GetAny fetches a record without owner scoping; used by the worker.
	GetAny(ctx context.Context, exportID string) (Export, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Export, error)
	// MarkReady sets the storage path and readiness flag. It fails with
	// ErrAlreadyReady if the record was already marked ready.
	MarkReady(ctx context.Context, exportID, storagePath string, readyAt time.Time) error
	MarkSent(ctx context.Context, exportID string) error
}
