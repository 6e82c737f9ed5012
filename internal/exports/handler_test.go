package exports_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"priceexport-backend/internal/exports"
)

func newAPIRouter(t *testing.T, userID string, svc *exports.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("userId", userID)
			c.Next()
		})
	}
	api := router.Group("/api/v1")
	exports.NewHandler(svc).RegisterRoutes(api)
	return router
}

func TestCreateExportHandler(t *testing.T) {
	repo := exports.NewMemoryRepo()
	q := &captureQueue{}
	svc := &exports.Service{
		Repo:      repo,
		Suppliers: staticDirectory{"supplier-1": true},
		Queue:     q,
	}
	router := newAPIRouter(t, "user-1", svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exports", strings.NewReader(`{"supplierId":"supplier-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var body exports.ExportResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ExportID == "" {
		t.Fatalf("expected export id in response")
	}
	if body.SupplierID != "supplier-1" {
		t.Fatalf("expected supplier id, got %s", body.SupplierID)
	}
	if body.IsReady {
		t.Fatalf("expected pending export")
	}
	if len(q.sent) != 1 {
		t.Fatalf("expected one queued message, got %d", len(q.sent))
	}
}

func TestCreateExportHandlerCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := exports.NewMemoryRepo()
	q := &captureQueue{}
	svc := &exports.Service{
		Repo:      repo,
		Suppliers: staticDirectory{"supplier-1": true},
		Queue:     q,
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("requestId", "req-handler-1")
		c.Next()
	})
	api := router.Group("/api/v1")
	exports.NewHandler(svc).RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exports", strings.NewReader(`{"supplierId":"supplier-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(q.sent) != 1 {
		t.Fatalf("expected one queued message, got %d", len(q.sent))
	}
	if q.sent[0].RequestID != "req-handler-1" {
		t.Fatalf("expected request id in queued message, got %q", q.sent[0].RequestID)
	}
}

func TestCreateExportHandlerUnknownSupplier(t *testing.T) {
	svc := &exports.Service{
		Repo:      exports.NewMemoryRepo(),
		Suppliers: staticDirectory{},
	}
	router := newAPIRouter(t, "user-1", svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exports", strings.NewReader(`{"supplierId":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "supplier not found") {
		t.Fatalf("expected supplier not found error, got %s", resp.Body.String())
	}
}

func TestCreateExportHandlerValidation(t *testing.T) {
	svc := &exports.Service{Repo: exports.NewMemoryRepo()}
	router := newAPIRouter(t, "user-1", svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exports", strings.NewReader(`{"supplierId":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "supplierId is required") {
		t.Fatalf("expected validation error, got %s", resp.Body.String())
	}
}

func TestListExportsHandler(t *testing.T) {
	repo := exports.NewMemoryRepo()
	svc := &exports.Service{Repo: repo}
	router := newAPIRouter(t, "user-1", svc)

	now := time.Now().UTC()
	seedExport(t, repo, exports.Export{ID: "export-old", UserID: "user-1", SupplierID: "supplier-1", CreatedAt: now.Add(-time.Hour)})
	seedExport(t, repo, exports.Export{ID: "export-new", UserID: "user-1", SupplierID: "supplier-1", CreatedAt: now})
	seedExport(t, repo, exports.Export{ID: "export-other", UserID: "user-2", SupplierID: "supplier-1", CreatedAt: now})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body []exports.ExportResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(body))
	}
	if body[0].ExportID != "export-new" || body[1].ExportID != "export-old" {
		t.Fatalf("expected newest first, got %s then %s", body[0].ExportID, body[1].ExportID)
	}
}

func TestGetExportHandler(t *testing.T) {
	repo := exports.NewMemoryRepo()
	svc := &exports.Service{Repo: repo}
	router := newAPIRouter(t, "user-1", svc)

	readyAt := time.Now().UTC()
	seedExport(t, repo, exports.Export{
		ID:          "export-1",
		UserID:      "user-1",
		SupplierID:  "supplier-1",
		StoragePath: "price-export/export-1/price-2025.csv",
		IsReady:     true,
		ReadyAt:     &readyAt,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports/export-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body exports.ExportResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ExportID != "export-1" || !body.IsReady {
		t.Fatalf("unexpected response: %+v", body)
	}
	if body.ReadyAt == nil {
		t.Fatalf("expected readyAt in response")
	}
}

func TestGetExportHandlerForeignOwner(t *testing.T) {
	repo := exports.NewMemoryRepo()
	svc := &exports.Service{Repo: repo}
	router := newAPIRouter(t, "user-other", svc)

	seedExport(t, repo, exports.Export{ID: "export-1", UserID: "user-owner", SupplierID: "supplier-1"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports/export-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}
