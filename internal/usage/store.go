package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the row-store collaborator the ledger runs against: a keyed read
// returning zero-or-one record and keyed partial updates for each counter
// group. Tests use an in-memory implementation.
type Store interface {
	// GetByUserID returns the user's usage record, or (nil, nil) when no
	// record exists.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Record, error)

	// UpdateDaily sets daily_message_count and daily_reset.
	UpdateDaily(ctx context.Context, userID uuid.UUID, count int, resetAt time.Time) error

	// UpdateProDaily sets daily_pro_message_count and daily_pro_reset.
	UpdateProDaily(ctx context.Context, userID uuid.UUID, count int, resetAt time.Time) error

	// UpdateMessageCounts sets message_count and daily_message_count.
	UpdateMessageCounts(ctx context.Context, userID uuid.UUID, messageCount, dailyCount int) error

	// UpdateProMessageCount sets daily_pro_message_count.
	UpdateProMessageCount(ctx context.Context, userID uuid.UUID, count int) error
}

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a Postgres-backed Store reading the usage columns on users.
func NewStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*Record, error) {
	query := `
		SELECT id, message_count, daily_message_count, daily_reset,
		       daily_pro_message_count, daily_pro_reset, anonymous, premium
		FROM users WHERE id = $1`

	rec := &Record{}
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID, &rec.MessageCount, &rec.DailyMessageCount, &rec.DailyReset,
		&rec.DailyProMessageCount, &rec.DailyProReset, &rec.Anonymous, &rec.Premium)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying usage record: %w", err)
	}
	return rec, nil
}

func (s *postgresStore) UpdateDaily(ctx context.Context, userID uuid.UUID, count int, resetAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET daily_message_count = $2, daily_reset = $3, updated_at = NOW()
		 WHERE id = $1`, userID, count, resetAt)
	if err != nil {
		return fmt.Errorf("updating daily counter: %w", err)
	}
	return nil
}

func (s *postgresStore) UpdateProDaily(ctx context.Context, userID uuid.UUID, count int, resetAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET daily_pro_message_count = $2, daily_pro_reset = $3, updated_at = NOW()
		 WHERE id = $1`, userID, count, resetAt)
	if err != nil {
		return fmt.Errorf("updating pro daily counter: %w", err)
	}
	return nil
}

func (s *postgresStore) UpdateMessageCounts(ctx context.Context, userID uuid.UUID, messageCount, dailyCount int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET message_count = $2, daily_message_count = $3, updated_at = NOW()
		 WHERE id = $1`, userID, messageCount, dailyCount)
	if err != nil {
		return fmt.Errorf("updating message counts: %w", err)
	}
	return nil
}

func (s *postgresStore) UpdateProMessageCount(ctx context.Context, userID uuid.UUID, count int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET daily_pro_message_count = $2, updated_at = NOW()
		 WHERE id = $1`, userID, count)
	if err != nil {
		return fmt.Errorf("updating pro message count: %w", err)
	}
	return nil
}
