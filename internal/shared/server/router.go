package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"priceexport-backend/internal/account"
	googleauth "priceexport-backend/internal/auth"
	"priceexport-backend/internal/exports"
	"priceexport-backend/internal/services/health"
	"priceexport-backend/internal/shared/config"
	"priceexport-backend/internal/shared/metrics"
	"priceexport-backend/internal/shared/server/middleware"
	"priceexport-backend/internal/shared/server/respond"
	"priceexport-backend/internal/suppliers"
	"priceexport-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	ExportHandler   *exports.Handler
	SupplierHandler *suppliers.Handler
	UserHandler     *users.Handler
	AccountHandler  *account.Handler
	GoogleAuth      *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.SupplierHandler != nil {
		deps.SupplierHandler.RegisterRoutes(api)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
