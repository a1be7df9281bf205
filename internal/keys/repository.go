package keys

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Upsert(ctx context.Context, key *UserKey) error
	GetByProvider(ctx context.Context, userID uuid.UUID, provider string) (*UserKey, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*UserKey, error)
	Delete(ctx context.Context, userID uuid.UUID, provider string) (bool, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Upsert(ctx context.Context, key *UserKey) error {
	query := `
		INSERT INTO user_keys (user_id, provider, encrypted_key, iv, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id, provider)
		DO UPDATE SET encrypted_key = $3, iv = $4, updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query, key.UserID, key.Provider, key.Encrypted, key.IV)
	if err != nil {
		return fmt.Errorf("upserting user key: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByProvider(ctx context.Context, userID uuid.UUID, provider string) (*UserKey, error) {
	query := `
		SELECT user_id, provider, encrypted_key, iv, created_at, updated_at
		FROM user_keys WHERE user_id = $1 AND provider = $2`

	key := &UserKey{}
	err := r.pool.QueryRow(ctx, query, userID, provider).Scan(
		&key.UserID, &key.Provider, &key.Encrypted, &key.IV, &key.CreatedAt, &key.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user key: %w", err)
	}
	return key, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*UserKey, error) {
	query := `
		SELECT user_id, provider, encrypted_key, iv, created_at, updated_at
		FROM user_keys WHERE user_id = $1 ORDER BY provider`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing user keys: %w", err)
	}
	defer rows.Close()

	var out []*UserKey
	for rows.Next() {
		key := &UserKey{}
		if err := rows.Scan(&key.UserID, &key.Provider, &key.Encrypted, &key.IV, &key.CreatedAt, &key.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user key: %w", err)
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Delete(ctx context.Context, userID uuid.UUID, provider string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM user_keys WHERE user_id = $1 AND provider = $2`, userID, provider)
	if err != nil {
		return false, fmt.Errorf("deleting user key: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
