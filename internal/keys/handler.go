package keys

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/prismchat/prism/internal/api"
	"github.com/prismchat/prism/internal/auth"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

type SaveKeyRequest struct {
	Provider string `json:"provider" validate:"required,alphanum,min=2,max=32"`
	APIKey   string `json:"api_key" validate:"required"`
}

// Save stores an encrypted provider API key for the authenticated user.
// The plaintext never appears in the response; clients get the masked form.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req SaveKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	if err := h.svc.Save(r.Context(), userID, req.Provider, req.APIKey); err != nil {
		slog.Error("saving provider key", "provider", req.Provider, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusCreated, MaskedKey{
		Provider:  req.Provider,
		MaskedKey: MaskKey(req.APIKey),
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	masked, err := h.svc.List(r.Context(), userID)
	if err != nil {
		slog.Error("listing provider keys", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, masked)
}

// Providers reports which supported providers the user has a key stored for.
func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	statuses, err := h.svc.ProviderStatuses(r.Context(), userID)
	if err != nil {
		slog.Error("listing provider statuses", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"providers": statuses})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	provider := chi.URLParam(r, "provider")
	if err := h.svc.Delete(r.Context(), userID, provider); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			api.HandleError(w, api.NewNotFoundError("provider key not found"))
			return
		}
		slog.Error("deleting provider key", "provider", provider, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "key deleted")
}

func requestUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
