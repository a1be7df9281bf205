package keys

import (
	"time"

	"github.com/google/uuid"
)

// UserKey matches the user_keys table schema: one encrypted provider API key
// per (user, provider) pair.
type UserKey struct {
	UserID    uuid.UUID `json:"user_id"`
	Provider  string    `json:"provider"`
	Encrypted string    `json:"-"`
	IV        string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaskedKey is the only form in which a stored key is returned to clients.
type MaskedKey struct {
	Provider  string    `json:"provider"`
	MaskedKey string    `json:"masked_key"`
	UpdatedAt time.Time `json:"updated_at"`
}
