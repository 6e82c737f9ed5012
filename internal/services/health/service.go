package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status returns a simple health payload. The database check is best-effort
// and reported alongside overall liveness.
func (s *Service) Status(ctx context.Context) map[string]bool {
	status := map[string]bool{"ok": true}
	if s.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		status["db"] = s.DB.PingContext(pingCtx) == nil
	}
	return status
}
