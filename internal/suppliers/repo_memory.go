package suppliers

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores suppliers in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Supplier
	prices map[string][]PriceRow
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Supplier),
		prices: make(map[string][]PriceRow),
	}
}

// Put stores or replaces a supplier. Intended for dev seeding and tests.
func (r *MemoryRepo) Put(supplier Supplier, prices []PriceRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[supplier.ID] = supplier
	r.prices[supplier.ID] = append([]PriceRow(nil), prices...)
}

// GetByID returns a supplier by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, supplierID string) (Supplier, error) {
	if err := ctx.Err(); err != nil {
		return Supplier{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	supplier, ok := r.byID[supplierID]
	if !ok {
		return Supplier{}, ErrNotFound
	}
	return supplier, nil
}

// List returns suppliers ordered by name.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Supplier, error) {
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
	out := make([]Supplier, 0, len(r.byID))
	for _, supplier := range r.byID {
		out = append(out, supplier)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if offset >= len(out) {
		return []Supplier{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// ListPrices returns the price rows for a supplier.
func (r *MemoryRepo) ListPrices(ctx context.Context, supplierID string) ([]PriceRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.byID[supplierID]; !ok {
		return nil, ErrNotFound
	}
	return append([]PriceRow(nil), r.prices[supplierID]...), nil
}

var _ Repo = (*MemoryRepo)(nil)
