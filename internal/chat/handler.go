package chat

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
	"github.com/prismchat/prism/internal/usage"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

type SendMessageRequest struct {
	ChatID  string `json:"chat_id" validate:"omitempty,uuid"`
	Model   string `json:"model" validate:"required"`
	Content string `json:"content" validate:"required,max=32768"`
}

// Send accepts a user message, runs quota accounting, and returns the stored
// message.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
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

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	params := SendParams{
		ModelID:       req.Model,
		Content:       req.Content,
		Authenticated: !claims.Anonymous,
	}
	if req.ChatID != "" {
		params.ChatID, _ = uuid.Parse(req.ChatID)
	}

	msg, err := h.svc.SendMessage(r.Context(), userID, params)
	if err != nil {
		h.handleSendError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) handleSendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownModel):
		api.HandleError(w, api.NewBadRequestError("unknown model"))
	case errors.Is(err, ErrModelNotAllowed):
		api.HandleError(w, api.ErrModelNotAllowed)
	case errors.Is(err, ErrMissingProviderKey):
		api.HandleError(w, api.NewBadRequestError("no API key stored for this model's provider"))
	case errors.Is(err, ErrChatNotFound):
		api.HandleError(w, api.NewNotFoundError("chat not found"))
	default:
		if _, ok := usage.IsQuotaError(err); !ok && !errors.Is(err, usage.ErrUserNotFound) {
			slog.Error("sending message", "error", err)
		}
		api.HandleError(w, err)
	}
}

// ListModels returns the model catalog. Public: clients need it to render
// the model picker before a session exists.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]any{"models": Models()})
}

// ListChats returns the authenticated user's chats.
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	chats, err := h.svc.ListChats(r.Context(), userID)
	if err != nil {
		slog.Error("listing chats", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, chats)
}

// ListMessages returns one chat's messages in order.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid chat id"))
		return
	}

	msgs, err := h.svc.ListMessages(r.Context(), userID, chatID)
	if err != nil {
		if errors.Is(err, ErrChatNotFound) {
			api.HandleError(w, api.NewNotFoundError("chat not found"))
			return
		}
		slog.Error("listing messages", "chat_id", chatID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, msgs)
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
