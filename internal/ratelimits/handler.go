// Package ratelimits exposes the usage status endpoint: a read-only view of
// the authenticated user's daily counters and remaining allowance.
package ratelimits

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/prismchat/prism/internal/api"
	"github.com/prismchat/prism/internal/auth"
	"github.com/prismchat/prism/internal/usage"
)

type Handler struct {
	ledger *usage.Ledger
}

func NewHandler(ledger *usage.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// GetUsage returns the caller's combined usage summary.
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	status, err := h.ledger.MessageUsage(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, usage.ErrUserNotFound) {
			slog.Error("reading message usage", "error", err)
		}
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, status)
}
