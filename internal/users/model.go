package users

import (
	"time"

	"github.com/google/uuid"
)

// User matches the users table schema. Guests are real rows with
// Anonymous=true and no email; the usage ledger reads the counter columns
// through its own store view of this table.
type User struct {
	ID                   uuid.UUID `json:"id"`
	Email                string    `json:"email,omitempty"`
	PasswordHash         string    `json:"-"`
	Anonymous            bool      `json:"anonymous"`
	Premium              bool      `json:"premium"`
	MessageCount         int       `json:"message_count"`
	DailyMessageCount    int       `json:"daily_message_count"`
	DailyReset           time.Time `json:"daily_reset"`
	DailyProMessageCount int       `json:"daily_pro_message_count"`
	DailyProReset        time.Time `json:"daily_pro_reset"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
