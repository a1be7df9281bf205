package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prismchat/prism/internal/usage"
)

type Response struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// QuotaResponse is the 429 body for a reached daily limit.
type QuotaResponse struct {
	Error     string    `json:"error"`
	Kind      string    `json:"kind"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// PaginatedResponse wraps list data with pagination metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Data: data})
}

func JSONMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Message: message})
}

func JSONPaginated(w http.ResponseWriter, status int, data any, totalCount int64, page, pageSize int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(PaginatedResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

func JSONErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: message})
}

// JSONQuota writes a 429 carrying the quota error's machine-readable kind
// plus limit/remaining/reset context.
func JSONQuota(w http.ResponseWriter, qe *usage.QuotaError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", qe.ResetAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(QuotaResponse{
		Error:     "daily message limit reached",
		Kind:      qe.Kind,
		Limit:     qe.Limit,
		Remaining: qe.Remaining,
		ResetAt:   qe.ResetAt,
	})
}
