package exports

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores export records in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Export
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Export)}
}

// Create stores the export record.
func (r *MemoryRepo) Create(ctx context.Context, export Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[export.ID] = export
	return nil
}

// GetByID returns an export by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, exportID string) (Export, error) {
	if err := ctx.Err(); err != nil {
		return Export{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	export, ok := r.byID[exportID]
	if !ok {
		return Export{}, ErrNotFound
	}
	if export.UserID != userID {
		return Export{}, ErrForbidden
	}
	return export, nil
}

// GetAny returns an export by ID without owner scoping.
func (r *MemoryRepo) GetAny(ctx context.Context, exportID string) (Export, error) {
	if err := ctx.Err(); err != nil {
		return Export{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	export, ok := r.byID[exportID]
	if !ok {
		return Export{}, ErrNotFound
	}
	return export, nil
}

// ListByUser returns exports for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Export, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	var out []Export
	for _, export := range r.byID {
		if export.UserID == userID {
			out = append(out, export)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Export{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// MarkReady transitions a record to ready exactly once.
func (r *MemoryRepo) MarkReady(ctx context.Context, exportID, storagePath string, readyAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	export, ok := r.byID[exportID]
	if !ok {
		return ErrNotFound
	}
	if export.IsReady {
		return ErrAlreadyReady
	}
	export.StoragePath = storagePath
	export.IsReady = true
	export.ReadyAt = &readyAt
	r.byID[exportID] = export
	return nil
}

// ClaimGuest reassigns a guest's export records to an authenticated user and
// returns the number of records moved.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, export := range r.byID {
		if export.UserID == guestUserID {
			export.UserID = authedUserID
			r.byID[id] = export
			moved++
		}
	}
	return moved, nil
}

// MarkSent flags a record as delivered.
func (r *MemoryRepo) MarkSent(ctx context.Context, exportID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	export, ok := r.byID[exportID]
	if !ok {
		return ErrNotFound
	}
	export.IsSend = true
	r.byID[exportID] = export
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
