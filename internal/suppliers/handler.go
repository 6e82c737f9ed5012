package suppliers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"priceexport-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the supplier directory.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches supplier routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/suppliers", h.list)
	rg.GET("/suppliers/:id", h.get)
}

// SupplierResponse is the outward-facing representation of a supplier.
type SupplierResponse struct {
	SupplierID string    `json:"supplierId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toResponse(supplier Supplier) SupplierResponse {
	return SupplierResponse{
		SupplierID: supplier.ID,
		Name:       supplier.Name,
		CreatedAt:  supplier.CreatedAt,
	}
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.Repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list suppliers", nil)
		return
	}

	resp := make([]SupplierResponse, 0, len(records))
	for _, supplier := range records {
		resp = append(resp, toResponse(supplier))
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	supplierID := c.Param("id")
	if supplierID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "supplier id is required", nil)
		return
	}
	c.Set("supplierId", supplierID)

	supplier, err := h.Repo.GetByID(c.Request.Context(), supplierID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "supplier not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch supplier", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(supplier))
}
