package suppliers

import "context"

// Repo defines read operations over the supplier directory.
type Repo interface {
	GetByID(ctx context.Context, supplierID string) (Supplier, error)
	List(ctx context.Context, limit, offset int) ([]Supplier, error)
	ListPrices(ctx context.Context, supplierID string) ([]PriceRow, error)
}
