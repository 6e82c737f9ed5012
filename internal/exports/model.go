package exports

import "time"

// Export represents a generated supplier price file owned by a user.
//
// A record starts out not ready with an empty storage path. The generation
// worker sets the path and flips IsReady exactly once; records are never
// deleted by the download flow.
type Export struct {
	ID          string
	UserID      string
	SupplierID  string
	StoragePath string
	IsAuto      bool
	IsReady     bool
	IsSend      bool
	CreatedAt   time.Time
	ReadyAt     *time.Time
}

// Downloadable reports whether a signed download URL may be issued for
// the record.
func (e Export) Downloadable() bool {
	return e.IsReady && e.StoragePath != ""
}
