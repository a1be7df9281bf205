package keys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ErrKeyNotFound means the user has no stored key for the provider.
var ErrKeyNotFound = errors.New("provider key not found")

// Service stores and retrieves user-supplied provider API keys, encrypting
// at rest and exposing only masked forms for display.
type Service struct {
	repo   Repository
	cipher *Cipher
}

func NewService(repo Repository, cipher *Cipher) *Service {
	return &Service{repo: repo, cipher: cipher}
}

// Save encrypts and upserts the key for (user, provider).
func (s *Service) Save(ctx context.Context, userID uuid.UUID, provider, apiKey string) error {
	enc, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		return fmt.Errorf("encrypting provider key: %w", err)
	}

	return s.repo.Upsert(ctx, &UserKey{
		UserID:    userID,
		Provider:  provider,
		Encrypted: enc.Encrypted,
		IV:        enc.IV,
	})
}

// Reveal decrypts the stored key for use in an outbound provider call. It is
// never exposed over the API surface.
func (s *Service) Reveal(ctx context.Context, userID uuid.UUID, provider string) (string, error) {
	key, err := s.repo.GetByProvider(ctx, userID, provider)
	if err != nil {
		return "", err
	}
	if key == nil {
		return "", ErrKeyNotFound
	}

	plaintext, err := s.cipher.Decrypt(key.Encrypted, key.IV)
	if err != nil {
		return "", fmt.Errorf("decrypting provider key: %w", err)
	}
	return plaintext, nil
}

// List returns all of the user's stored keys in masked form. A row that no
// longer decrypts is skipped rather than failing the listing; the user can
// still see and manage their remaining keys, and the bad row stays visible
// in the logs until it is re-saved or deleted.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]MaskedKey, error) {
	stored, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	masked := make([]MaskedKey, 0, len(stored))
	for _, key := range stored {
		plaintext, err := s.cipher.Decrypt(key.Encrypted, key.IV)
		if err != nil {
			slog.Warn("skipping undecryptable provider key", "provider", key.Provider, "error", err)
			continue
		}
		masked = append(masked, MaskedKey{
			Provider:  key.Provider,
			MaskedKey: MaskKey(plaintext),
			UpdatedAt: key.UpdatedAt,
		})
	}
	return masked, nil
}

// ProviderStatuses reports, for every supported provider, whether the user
// has a key stored. Keys are not decrypted for this; only row existence is
// consulted.
func (s *Service) ProviderStatuses(ctx context.Context, userID uuid.UUID) ([]ProviderStatus, error) {
	stored, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(stored))
	for _, key := range stored {
		have[key.Provider] = true
	}

	statuses := make([]ProviderStatus, 0, len(SupportedProviders))
	for _, provider := range SupportedProviders {
		statuses = append(statuses, ProviderStatus{
			Provider:   provider,
			HasUserKey: have[provider] && !keyless[provider],
		})
	}
	return statuses, nil
}

// Delete removes the user's key for a provider.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, provider string) error {
	deleted, err := s.repo.Delete(ctx, userID, provider)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrKeyNotFound
	}
	return nil
}
