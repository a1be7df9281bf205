package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry matches the quota_audit table schema: one row per recorded quota
// violation.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	Limit     int       `json:"limit"`
	CreatedAt time.Time `json:"created_at"`
}

// ListParams holds pagination and filtering parameters for audit queries.
type ListParams struct {
	Kind     string
	Page     int
	PageSize int
}

// DefaultListParams returns sensible defaults.
func DefaultListParams() ListParams {
	return ListParams{
		Page:     1,
		PageSize: 20,
	}
}
