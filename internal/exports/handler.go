package exports

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"priceexport-backend/internal/shared/server/middleware"
	"priceexport-backend/internal/shared/server/respond"
	"priceexport-backend/internal/shared/storage/object"
	"priceexport-backend/internal/shared/util"
)

// Handler wires HTTP handlers to the export service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/exports", h.create)
	rg.GET("/exports", h.list)
	rg.GET("/exports/:id", h.get)
	rg.GET("/exports/:id/download", h.download)
}

type createRequest struct {
	SupplierID string `json:"supplierId"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.SupplierID = strings.TrimSpace(req.SupplierID)
	if req.SupplierID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "supplierId is required", nil)
		return
	}
	c.Set("supplierId", req.SupplierID)

	ctx := WithRequestID(c.Request.Context(), c.GetString("requestId"))
	export, err := h.Svc.Request(ctx, userID, req.SupplierID, false)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid input", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "supplier not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to request export", nil)
		}
		return
	}
	c.Set("exportId", export.ID)

	respond.JSON(c, http.StatusCreated, toResponse(export))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

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

	records, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list exports", nil)
		return
	}

	resp := make([]ExportResponse, 0, len(records))
	for _, export := range records {
		resp = append(resp, toResponse(export))
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	exportID := c.Param("id")
	if exportID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "export id is required", nil)
		return
	}
	c.Set("exportId", exportID)

	export, err := h.Svc.Get(c.Request.Context(), userID, exportID)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch export", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(export))
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	exportID := c.Param("id")
	if exportID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "export id is required", nil)
		return
	}
	c.Set("exportId", exportID)

	link, err := h.Svc.Download(c.Request.Context(), userID, exportID)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
		case errors.Is(err, object.ErrTemporaryURLUnsupported):
			h.streamExport(c, userID, exportID)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue download url", nil)
		}
		return
	}

	respond.Data(c, http.StatusOK, DownloadResponse{
		Name: link.Name,
		URL:  link.URL,
	})
}

// streamExport serves the export file directly when the storage backend
// cannot issue signed URLs, e.g. the local filesystem store in development.
func (h *Handler) streamExport(c *gin.Context, userID, exportID string) {
	reader, name, err := h.Svc.OpenFile(c.Request.Context(), userID, exportID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load export file", nil)
		return
	}
	defer reader.Close()

	fileName, err := util.SanitizeFileName(name)
	if err != nil {
		fileName = "export.csv"
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
