package suppliers

import "time"

// Supplier is a read-only directory entry referenced by export records.
type Supplier struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceRow is one entry of a supplier's current price list.
type PriceRow struct {
	ID         string
	SupplierID string
	SKU        string
	Title      string
	PriceCents int64
	Currency   string
	UpdatedAt  time.Time
}
