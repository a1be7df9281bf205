package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prismchat/prism/internal/events"
	"github.com/prismchat/prism/internal/keys"
	"github.com/prismchat/prism/internal/metrics"
	"github.com/prismchat/prism/internal/usage"
)

var (
	ErrUnknownModel       = errors.New("unknown model")
	ErrModelNotAllowed    = errors.New("model not available for this account")
	ErrMissingProviderKey = errors.New("no API key stored for the model's provider")
	ErrChatNotFound       = errors.New("chat not found")
)

// KeyRevealer provides decrypted provider keys. Satisfied by keys.Service.
type KeyRevealer interface {
	Reveal(ctx context.Context, userID uuid.UUID, provider string) (string, error)
}

// Service orchestrates message intake: model checks, quota accounting, and
// persistence.
type Service struct {
	repo      Repository
	ledger    *usage.Ledger
	keys      KeyRevealer
	publisher *events.Publisher
}

func NewService(repo Repository, ledger *usage.Ledger, keyRevealer KeyRevealer, publisher *events.Publisher) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		keys:      keyRevealer,
		publisher: publisher,
	}
}

// SendParams carries a single inbound user message.
type SendParams struct {
	ChatID        uuid.UUID
	ModelID       string
	Content       string
	Authenticated bool
}

// SendMessage validates the model against the caller's tier, checks the
// matching daily quota, persists the user message, and only then increments
// the counter. The quota check and increment are separate store round-trips;
// concurrent sends from one user can slightly overshoot the limit.
func (s *Service) SendMessage(ctx context.Context, userID uuid.UUID, params SendParams) (*Message, error) {
	model, ok := LookupModel(params.ModelID)
	if !ok {
		return nil, ErrUnknownModel
	}
	if !params.Authenticated && !GuestAllowed(model.ID) {
		return nil, ErrModelNotAllowed
	}

	if !model.Free {
		if _, err := s.keys.Reveal(ctx, userID, model.Provider); err != nil {
			if errors.Is(err, keys.ErrKeyNotFound) {
				return nil, ErrMissingProviderKey
			}
			return nil, fmt.Errorf("resolving provider key: %w", err)
		}
	}

	if err := s.checkQuota(ctx, userID, model); err != nil {
		return nil, err
	}

	chatID, err := s.ensureChat(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ChatID:  chatID,
		UserID:  userID,
		Role:    RoleUser,
		Content: params.Content,
		Model:   model.ID,
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	if model.Pro {
		err = s.ledger.IncrementProUsage(ctx, userID)
	} else {
		err = s.ledger.IncrementUsage(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	metrics.MessagesTotal.WithLabelValues(model.ID).Inc()

	if pubErr := s.publisher.PublishMessageSent(ctx, events.MessageSent{
		UserID:    userID,
		ChatID:    chatID,
		Model:     model.ID,
		ProModel:  model.Pro,
		Timestamp: time.Now().UTC(),
	}); pubErr != nil {
		slog.Warn("publishing message-sent event", "error", pubErr)
	}

	return msg, nil
}

func (s *Service) checkQuota(ctx context.Context, userID uuid.UUID, model Model) error {
	var err error
	if model.Pro {
		_, err = s.ledger.CheckProUsage(ctx, userID)
	} else {
		_, err = s.ledger.CheckUsage(ctx, userID)
	}
	if err == nil {
		return nil
	}

	if qe, ok := usage.IsQuotaError(err); ok {
		metrics.QuotaRejectionsTotal.WithLabelValues(qe.Kind).Inc()
		if pubErr := s.publisher.PublishQuotaExceeded(ctx, events.QuotaExceeded{
			UserID:    userID,
			Kind:      qe.Kind,
			Limit:     qe.Limit,
			Timestamp: time.Now().UTC(),
		}); pubErr != nil {
			slog.Warn("publishing quota-exceeded event", "error", pubErr)
		}
	}
	return err
}

func (s *Service) ensureChat(ctx context.Context, userID uuid.UUID, params SendParams) (uuid.UUID, error) {
	if params.ChatID != uuid.Nil {
		chat, err := s.repo.GetChat(ctx, userID, params.ChatID)
		if err != nil {
			return uuid.Nil, err
		}
		if chat == nil {
			return uuid.Nil, ErrChatNotFound
		}
		return chat.ID, nil
	}

	chat := &Chat{
		UserID: userID,
		Title:  titleFromContent(params.Content),
		Model:  params.ModelID,
	}
	if err := s.repo.CreateChat(ctx, chat); err != nil {
		return uuid.Nil, err
	}
	return chat.ID, nil
}

// ListChats returns the user's chats, most recently active first.
func (s *Service) ListChats(ctx context.Context, userID uuid.UUID) ([]*Chat, error) {
	return s.repo.ListChats(ctx, userID)
}

// ListMessages returns a chat's messages in order, enforcing ownership.
func (s *Service) ListMessages(ctx context.Context, userID, chatID uuid.UUID) ([]*Message, error) {
	chat, err := s.repo.GetChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return s.repo.ListMessages(ctx, chatID)
}

const maxTitleLen = 60

func titleFromContent(content string) string {
	title := strings.TrimSpace(content)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	// Truncate on rune boundaries; byte slicing could split UTF-8 sequences.
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = strings.TrimSpace(string(runes[:maxTitleLen]))
	}
	if title == "" {
		title = "New chat"
	}
	return title
}
