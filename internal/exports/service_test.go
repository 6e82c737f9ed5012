package exports_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"priceexport-backend/internal/exports"
	"priceexport-backend/internal/queue"
	"priceexport-backend/internal/shared/storage/object"
)

func TestDownloadReturnsNameAndVerbatimURL(t *testing.T) {
	repo := exports.NewMemoryRepo()
	store := &signingStore{url: "https://temporary-url.com/supplier-price-export-2025.xlsx"}
	svc := &exports.Service{Repo: repo, Store: store}

	seedExport(t, repo, exports.Export{
		ID:          "export-ready",
		UserID:      "user-1",
		SupplierID:  "supplier-1",
		StoragePath: "price-export/price-2025.xlsx",
		IsReady:     true,
	})

	link, err := svc.Download(context.Background(), "user-1", "export-ready")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if link.Name != "price-2025.xlsx" {
		t.Fatalf("expected name price-2025.xlsx, got %s", link.Name)
	}
	if link.URL != "https://temporary-url.com/supplier-price-export-2025.xlsx" {
		t.Fatalf("expected verbatim url, got %s", link.URL)
	}
	if store.calls != 1 {
		t.Fatalf("expected one store call, got %d", store.calls)
	}
	if store.lastKey != "price-export/price-2025.xlsx" {
		t.Fatalf("expected storage path passed through, got %s", store.lastKey)
	}
	if store.lastExpires != time.Hour {
		t.Fatalf("expected one hour expiry, got %s", store.lastExpires)
	}
}

func TestDownloadNotReadySkipsStore(t *testing.T) {
	repo := exports.NewMemoryRepo()
	store := &signingStore{url: "https://temporary-url.com/should-not-be-issued"}
	svc := &exports.Service{Repo: repo, Store: store}

	seedExport(t, repo, exports.Export{
		ID:          "export-pending",
		UserID:      "user-1",
		SupplierID:  "supplier-1",
		StoragePath: "price-export/price-2025.csv",
		IsReady:     false,
	})

	_, err := svc.Download(context.Background(), "user-1", "export-pending")
	if !errors.Is(err, exports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected store untouched, got %d calls", store.calls)
	}
}

func TestDownloadEmptyStoragePathSkipsStore(t *testing.T) {
	repo := exports.NewMemoryRepo()
	store := &signingStore{url: "https://temporary-url.com/should-not-be-issued"}
	svc := &exports.Service{Repo: repo, Store: store}

	seedExport(t, repo, exports.Export{
		ID:         "export-no-path",
		UserID:     "user-1",
		SupplierID: "supplier-1",
		IsReady:    true,
	})

	_, err := svc.Download(context.Background(), "user-1", "export-no-path")
	if !errors.Is(err, exports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected store untouched, got %d calls", store.calls)
	}
}

func TestDownloadForeignOwnerForbidden(t *testing.T) {
	repo := exports.NewMemoryRepo()
	store := &signingStore{url: "https://temporary-url.com/owned-by-somebody-else"}
	svc := &exports.Service{Repo: repo, Store: store}

	seedExport(t, repo, exports.Export{
		ID:          "export-foreign",
		UserID:      "user-owner",
		SupplierID:  "supplier-1",
		StoragePath: "price-export/price-2025.csv",
		IsReady:     true,
	})

	_, err := svc.Download(context.Background(), "user-other", "export-foreign")
	if !errors.Is(err, exports.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected store untouched, got %d calls", store.calls)
	}
}

func TestDownloadMissingExport(t *testing.T) {
	repo := exports.NewMemoryRepo()
	store := &signingStore{url: "https://temporary-url.com/nothing"}
	svc := &exports.Service{Repo: repo, Store: store}

	_, err := svc.Download(context.Background(), "user-1", "no-such-export")
	if !errors.Is(err, exports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadStoreWithoutURLSupport(t *testing.T) {
	repo := exports.NewMemoryRepo()
	store := &signingStore{err: object.ErrTemporaryURLUnsupported}
	svc := &exports.Service{Repo: repo, Store: store}

	seedExport(t, repo, exports.Export{
		ID:          "export-local",
		UserID:      "user-1",
		SupplierID:  "supplier-1",
		StoragePath: "price-export/price-2025.csv",
		IsReady:     true,
	})

	_, err := svc.Download(context.Background(), "user-1", "export-local")
	if !errors.Is(err, object.ErrTemporaryURLUnsupported) {
		t.Fatalf("expected ErrTemporaryURLUnsupported, got %v", err)
	}
}

func TestRequestCreatesRecordAndEnqueues(t *testing.T) {
	repo := exports.NewMemoryRepo()
	q := &captureQueue{}
	svc := &exports.Service{
		Repo:      repo,
		Suppliers: staticDirectory{"supplier-1": true},
		Queue:     q,
	}

	export, err := svc.Request(context.Background(), "user-1", "supplier-1", false)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if export.ID == "" {
		t.Fatalf("expected export id")
	}
	if export.IsReady || export.IsSend || export.StoragePath != "" {
		t.Fatalf("expected pending record, got %+v", export)
	}

	if len(q.sent) != 1 {
		t.Fatalf("expected one queued message, got %d", len(q.sent))
	}
	msg := q.sent[0]
	if msg.ExportID != export.ID || msg.SupplierID != "supplier-1" {
		t.Fatalf("unexpected queued message: %+v", msg)
	}
	if msg.Version != 1 {
		t.Fatalf("expected message version 1, got %d", msg.Version)
	}

	stored, err := repo.GetByID(context.Background(), "user-1", export.ID)
	if err != nil {
		t.Fatalf("get stored export: %v", err)
	}
	if stored.SupplierID != "supplier-1" {
		t.Fatalf("unexpected stored record: %+v", stored)
	}
}

func TestRequestPropagatesRequestID(t *testing.T) {
	repo := exports.NewMemoryRepo()
	q := &captureQueue{}
	svc := &exports.Service{
		Repo:      repo,
		Suppliers: staticDirectory{"supplier-1": true},
		Queue:     q,
	}

	ctx := exports.WithRequestID(context.Background(), "req-abc123")
	if _, err := svc.Request(ctx, "user-1", "supplier-1", false); err != nil {
		t.Fatalf("request: %v", err)
	}

	if len(q.sent) != 1 {
		t.Fatalf("expected one queued message, got %d", len(q.sent))
	}
	if q.sent[0].RequestID != "req-abc123" {
		t.Fatalf("expected request id in queued message, got %q", q.sent[0].RequestID)
	}
}

func TestOpenFileStreamsStoredObject(t *testing.T) {
	repo := exports.NewMemoryRepo()
	store := newCaptureStore()
	svc := &exports.Service{Repo: repo, Store: store}

	csvBody := "sku,title,price,currency\nSKU-1,Widget,19.99,USD\n"
	if _, err := store.SaveWithKey(context.Background(), "price-export/export-1/price-2025.csv", "text/csv; charset=utf-8", strings.NewReader(csvBody)); err != nil {
		t.Fatalf("save file: %v", err)
	}

	seedExport(t, repo, exports.Export{
		ID:          "export-1",
		UserID:      "user-1",
		SupplierID:  "supplier-1",
		StoragePath: "price-export/export-1/price-2025.csv",
		IsReady:     true,
	})

	reader, name, err := svc.OpenFile(context.Background(), "user-1", "export-1")
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer reader.Close()

	if name != "price-2025.csv" {
		t.Fatalf("expected name price-2025.csv, got %s", name)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != csvBody {
		t.Fatalf("unexpected file contents: %s", data)
	}
}

func TestOpenFileNotReady(t *testing.T) {
	repo := exports.NewMemoryRepo()
	svc := &exports.Service{Repo: repo, Store: newCaptureStore()}

	seedExport(t, repo, exports.Export{
		ID:          "export-pending",
		UserID:      "user-1",
		SupplierID:  "supplier-1",
		StoragePath: "price-export/export-pending/price-2025.csv",
		IsReady:     false,
	})

	_, _, err := svc.OpenFile(context.Background(), "user-1", "export-pending")
	if !errors.Is(err, exports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequestUnknownSupplier(t *testing.T) {
	repo := exports.NewMemoryRepo()
	svc := &exports.Service{
		Repo:      repo,
		Suppliers: staticDirectory{},
	}

	_, err := svc.Request(context.Background(), "user-1", "supplier-missing", false)
	if !errors.Is(err, exports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequestInvalidInput(t *testing.T) {
	svc := &exports.Service{Repo: exports.NewMemoryRepo()}

	if _, err := svc.Request(context.Background(), "", "supplier-1", false); !errors.Is(err, exports.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty user, got %v", err)
	}
	if _, err := svc.Request(context.Background(), "user-1", "", false); !errors.Is(err, exports.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty supplier, got %v", err)
	}
}

func TestRequestEnqueueFailure(t *testing.T) {
	repo := exports.NewMemoryRepo()
	q := &captureQueue{err: errors.New("queue down")}
	svc := &exports.Service{
		Repo:      repo,
		Suppliers: staticDirectory{"supplier-1": true},
		Queue:     q,
	}

	_, err := svc.Request(context.Background(), "user-1", "supplier-1", false)
	if err == nil {
		t.Fatalf("expected enqueue failure")
	}
}

func seedExport(t *testing.T, repo *exports.MemoryRepo, export exports.Export) {
	t.Helper()
	if export.CreatedAt.IsZero() {
		export.CreatedAt = time.Now().UTC()
	}
	if err := repo.Create(context.Background(), export); err != nil {
		t.Fatalf("seed export: %v", err)
	}
}

type signingStore struct {
	url         string
	err         error
	calls       int
	lastKey     string
	lastExpires time.Duration
}

func (s *signingStore) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *signingStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (s *signingStore) TemporaryURL(ctx context.Context, storageKey string, expires time.Duration) (string, error) {
	s.calls++
	s.lastKey = storageKey
	s.lastExpires = expires
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type staticDirectory map[string]bool

func (d staticDirectory) Exists(ctx context.Context, supplierID string) (bool, error) {
	return d[supplierID], nil
}

type captureQueue struct {
	sent []queue.Message
	err  error
}

func (q *captureQueue) Send(ctx context.Context, msg queue.Message) error {
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}
