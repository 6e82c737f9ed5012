package suppliers

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// GetByID returns a supplier by ID.
func (r *PGRepo) GetByID(ctx context.Context, supplierID string) (Supplier, error) {
	const query = `
SELECT id, name, created_at, updated_at
FROM suppliers
WHERE id = $1
LIMIT 1`
	var supplier Supplier
	err := r.DB.QueryRowContext(ctx, query, supplierID).Scan(
		&supplier.ID,
		&supplier.Name,
		&supplier.CreatedAt,
		&supplier.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Supplier{}, ErrNotFound
		}
		return Supplier{}, err
	}
	return supplier, nil
}

// List returns suppliers ordered by name.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Supplier, error) {
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
SELECT id, name, created_at, updated_at
FROM suppliers
ORDER BY name
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		var supplier Supplier
		if err := rows.Scan(&supplier.ID, &supplier.Name, &supplier.CreatedAt, &supplier.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, supplier)
	}
	return out, rows.Err()
}

// ListPrices returns the price rows for a supplier ordered by SKU.
func (r *PGRepo) ListPrices(ctx context.Context, supplierID string) ([]PriceRow, error) {
	const query = `
SELECT id, supplier_id, sku, title, price_cents, currency, updated_at
FROM supplier_prices
WHERE supplier_id = $1
ORDER BY sku`

	rows, err := r.DB.QueryContext(ctx, query, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PriceRow
	for rows.Next() {
		var row PriceRow
		if err := rows.Scan(
			&row.ID,
			&row.SupplierID,
			&row.SKU,
			&row.Title,
			&row.PriceCents,
			&row.Currency,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
