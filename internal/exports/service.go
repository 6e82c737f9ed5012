package exports

import (
	"context"
	"errors"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"priceexport-backend/internal/queue"
	"priceexport-backend/internal/shared/metrics"
	"priceexport-backend/internal/shared/storage/object"
	"priceexport-backend/internal/shared/telemetry"
)

// DownloadURLTTL is the validity window of issued download URLs.
const DownloadURLTTL = time.Hour

// SupplierDirectory looks up suppliers referenced by export requests.
type SupplierDirectory interface {
	Exists(ctx context.Context, supplierID string) (bool, error)
}

// DownloadLink is the result of a successful download request: the display
// filename and a signed URL valid for DownloadURLTTL.
type DownloadLink struct {
	Name string
	URL  string
}

// Service contains business logic for export records.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Suppliers SupplierDirectory
	Queue     queue.Client
}

// Request creates a not-ready export record for a supplier and enqueues a
// generation job when a queue is configured.
func (s *Service) Request(ctx context.Context, userID, supplierID string, isAuto bool) (Export, error) {
	if userID == "" || supplierID == "" {
		return Export{}, ErrInvalidInput
	}
	if s.Repo == nil {
		return Export{}, errors.New("missing dependencies")
	}

	if s.Suppliers != nil {
		ok, err := s.Suppliers.Exists(ctx, supplierID)
		if err != nil {
			return Export{}, err
		}
		if !ok {
			return Export{}, ErrNotFound
		}
	}

	export := Export{
		ID:         uuid.NewString(),
		UserID:     userID,
		SupplierID: supplierID,
		IsAuto:     isAuto,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, export); err != nil {
		return Export{}, err
	}
	metrics.IncExportRequested()

	if s.Queue != nil {
		msg := queue.Message{
			ExportID:   export.ID,
			SupplierID: export.SupplierID,
			RequestID:  RequestIDFromContext(ctx),
			EnqueuedAt: export.CreatedAt.Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			telemetry.Error("exports.enqueue.failed", map[string]any{
				"export_id":   export.ID,
				"supplier_id": export.SupplierID,
				"err":         err.Error(),
			})
			return Export{}, err
		}
	}

	return export, nil
}

// Get returns an export by ID for a user.
func (s *Service) Get(ctx context.Context, userID, exportID string) (Export, error) {
	if userID == "" || exportID == "" {
		return Export{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, exportID)
}

// List returns exports for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Export, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Download validates that the export has a finished file and asks the storage
// backend for a signed URL valid for one hour. The URL is returned verbatim;
// the record is not mutated. Records that are not ready, or that have no
// storage path, fail with ErrNotFound before the backend is consulted.
func (s *Service) Download(ctx context.Context, userID, exportID string) (DownloadLink, error) {
	if userID == "" || exportID == "" {
		return DownloadLink{}, ErrInvalidInput
	}

	export, err := s.Repo.GetByID(ctx, userID, exportID)
	if err != nil {
		return DownloadLink{}, err
	}

	if !export.Downloadable() {
		return DownloadLink{}, ErrNotFound
	}

	url, err := s.Store.TemporaryURL(ctx, export.StoragePath, DownloadURLTTL)
	if err != nil {
		return DownloadLink{}, err
	}
	metrics.IncDownloadIssued()

	return DownloadLink{
		Name: path.Base(export.StoragePath),
		URL:  url,
	}, nil
}

// OpenFile opens the finished export file for reading and returns its display
// filename. It applies the same ownership and readiness checks as Download;
// callers use it when the storage backend cannot sign URLs and the file has to
// be streamed instead.
func (s *Service) OpenFile(ctx context.Context, userID, exportID string) (io.ReadCloser, string, error) {
	if userID == "" || exportID == "" {
		return nil, "", ErrInvalidInput
	}

	export, err := s.Repo.GetByID(ctx, userID, exportID)
	if err != nil {
		return nil, "", err
	}

	if !export.Downloadable() {
		return nil, "", ErrNotFound
	}

	reader, err := s.Store.Open(ctx, export.StoragePath)
	if err != nil {
		return nil, "", err
	}
	metrics.IncDownloadIssued()

	return reader, path.Base(export.StoragePath), nil
}
