package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"priceexport-backend/internal/users"
)

func newMeRouter(t *testing.T, userID string, isGuest bool, repo *users.MemoryRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("userId", userID)
			c.Set("isGuest", isGuest)
			c.Next()
		})
	}
	api := router.Group("/api/v1")
	users.NewHandler(users.NewService(repo)).RegisterRoutes(api)
	return router
}

func TestMeReturnsProfile(t *testing.T) {
	repo := users.NewMemoryRepo()
	err := repo.Upsert(context.Background(), users.User{
		ID:    "google:123",
		Email: "buyer@example.com",
		Name:  "Buyer",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	router := newMeRouter(t, "google:123", false, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body users.User
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ID != "google:123" || body.Email != "buyer@example.com" {
		t.Fatalf("unexpected profile: %+v", body)
	}
}

func TestMeGuestRejected(t *testing.T) {
	router := newMeRouter(t, "guest:guest-1", true, users.NewMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "login required") {
		t.Fatalf("expected login required error, got %s", resp.Body.String())
	}
}

func TestMeUnknownUser(t *testing.T) {
	router := newMeRouter(t, "google:missing", false, users.NewMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestUpsertPreservesCreatedAt(t *testing.T) {
	repo := users.NewMemoryRepo()
	svc := users.NewService(repo)

	err := svc.UpsertFromLogin(context.Background(), users.User{ID: "google:1", Email: "a@example.com", Name: "A"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	first, err := repo.GetByID(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	err = svc.UpsertFromLogin(context.Background(), users.User{ID: "google:1", Email: "a@example.com", Name: "A Renamed"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	second, err := repo.GetByID(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected created_at preserved, got %s then %s", first.CreatedAt, second.CreatedAt)
	}
	if second.Name != "A Renamed" {
		t.Fatalf("expected name updated, got %s", second.Name)
	}
}
