package exports

import "time"

// ExportResponse is the outward-facing representation of an export record.
type ExportResponse struct {
	ExportID   string     `json:"exportId"`
	SupplierID string     `json:"supplierId"`
	IsAuto     bool       `json:"isAuto"`
	IsReady    bool       `json:"isReady"`
	IsSend     bool       `json:"isSend"`
	CreatedAt  time.Time  `json:"createdAt"`
	ReadyAt    *time.Time `json:"readyAt,omitempty"`
}

// DownloadResponse carries the display filename and signed URL.
type DownloadResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func toResponse(export Export) ExportResponse {
	return ExportResponse{
		ExportID:   export.ID,
		SupplierID: export.SupplierID,
		IsAuto:     export.IsAuto,
		IsReady:    export.IsReady,
		IsSend:     export.IsSend,
		CreatedAt:  export.CreatedAt,
		ReadyAt:    export.ReadyAt,
	}
}
