package users

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create provisions an authenticated user with zeroed usage counters; the
// reset timestamps start at creation time so the first day window opens now.
func (s *Service) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	now := time.Now()
	user := &User{
		ID:            uuid.New(),
		Email:         email,
		PasswordHash:  passwordHash,
		DailyReset:    now,
		DailyProReset: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateGuest provisions an anonymous session record. Guests get the lower
// daily quota and no credentials.
func (s *Service) CreateGuest(ctx context.Context) (*User, error) {
	now := time.Now()
	user := &User{
		ID:            uuid.New(),
		Anonymous:     true,
		DailyReset:    now,
		DailyProReset: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}
