package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	CreateChat(ctx context.Context, c *Chat) error
	GetChat(ctx context.Context, userID, chatID uuid.UUID) (*Chat, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]*Chat, error)
	InsertMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]*Message, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) CreateChat(ctx context.Context, c *Chat) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	query := `
		INSERT INTO chats (id, user_id, title, model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, c.ID, c.UserID, c.Title, c.Model).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating chat: %w", err)
	}
	return nil
}

// GetChat returns nil, nil when the chat does not exist or belongs to a
// different user.
func (r *postgresRepository) GetChat(ctx context.Context, userID, chatID uuid.UUID) (*Chat, error) {
	query := `
		SELECT id, user_id, title, model, created_at, updated_at
		FROM chats WHERE id = $1 AND user_id = $2`

	c := &Chat{}
	err := r.pool.QueryRow(ctx, query, chatID, userID).Scan(
		&c.ID, &c.UserID, &c.Title, &c.Model, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying chat: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) ListChats(ctx context.Context, userID uuid.UUID) ([]*Chat, error) {
	query := `
		SELECT id, user_id, title, model, created_at, updated_at
		FROM chats WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	defer rows.Close()

	var out []*Chat
	for rows.Next() {
		c := &Chat{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Model, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepository) InsertMessage(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	query := `
		INSERT INTO messages (id, chat_id, user_id, role, content, model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, m.ID, m.ChatID, m.UserID, m.Role, m.Content, m.Model).
		Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	if _, err := r.pool.Exec(ctx, `UPDATE chats SET updated_at = NOW() WHERE id = $1`, m.ChatID); err != nil {
		return fmt.Errorf("touching chat: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]*Message, error) {
	query := `
		SELECT id, chat_id, user_id, role, content, model, created_at
		FROM messages WHERE chat_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.ChatID, &m.UserID, &m.Role, &m.Content, &m.Model, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
