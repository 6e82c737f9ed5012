package exports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"strconv"
	"time"

	"priceexport-backend/internal/shared/metrics"
	"priceexport-backend/internal/shared/storage/object"
	"priceexport-backend/internal/shared/telemetry"
)

const storagePathPrefix = "price-export"

// PriceRow is one line of a supplier's price list.
type PriceRow struct {
	SKU        string
	Title      string
	PriceCents int64
	Currency   string
}

// PriceSource loads the price rows that make up an export file.
type PriceSource interface {
	ListPrices(ctx context.Context, supplierID string) ([]PriceRow, error)
}

// Generator produces export files and performs the single readiness
// transition on their records.
type Generator struct {
	Repo   Repo
	Prices PriceSource
	Store  object.ObjectStore
}

// ProcessExport renders the supplier price list to CSV, stores it, and marks
// the record ready. Reprocessing a record that is already ready is a no-op,
// so queue redeliveries are harmless.
func (g *Generator) ProcessExport(ctx context.Context, exportID string) error {
	if exportID == "" {
		return ErrInvalidInput
	}
	if g.Repo == nil || g.Prices == nil || g.Store == nil {
		return errors.New("missing dependencies")
	}

	started := metrics.NowMillis()

	export, err := g.Repo.GetAny(ctx, exportID)
	if err != nil {
		return err
	}
	if export.IsReady {
		telemetry.Info("exports.generate.skip_ready", map[string]any{
			"export_id": export.ID,
		})
		return nil
	}

	rows, err := g.Prices.ListPrices(ctx, export.SupplierID)
	if err != nil {
		metrics.IncExportFailed()
		return fmt.Errorf("list prices supplier=%s: %w", export.SupplierID, err)
	}

	payload, err := renderCSV(rows)
	if err != nil {
		metrics.IncExportFailed()
		return fmt.Errorf("render export %s: %w", export.ID, err)
	}

	storagePath := path.Join(storagePathPrefix, export.ID, exportFileName(export))
	if _, err := g.Store.SaveWithKey(ctx, storagePath, "text/csv; charset=utf-8", bytes.NewReader(payload)); err != nil {
		metrics.IncExportFailed()
		return fmt.Errorf("store export %s: %w", export.ID, err)
	}

	if err := g.Repo.MarkReady(ctx, export.ID, storagePath, time.Now().UTC()); err != nil {
		if errors.Is(err, ErrAlreadyReady) {
			return nil
		}
		metrics.IncExportFailed()
		return fmt.Errorf("mark ready export %s: %w", export.ID, err)
	}

	metrics.IncExportReady()
	metrics.ObserveExportDurationMs(metrics.NowMillis() - started)
	telemetry.Info("exports.generate.complete", map[string]any{
		"export_id":    export.ID,
		"supplier_id":  export.SupplierID,
		"storage_path": storagePath,
		"rows":         len(rows),
		"request_id":   RequestIDFromContext(ctx),
	})
	return nil
}

func exportFileName(export Export) string {
	return fmt.Sprintf("price-%d.csv", export.CreatedAt.Year())
}

func renderCSV(rows []PriceRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"sku", "title", "price", "currency"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.SKU,
			row.Title,
			formatPrice(row.PriceCents),
			row.Currency,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
}
