package events

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents holds all prism event subjects.
const StreamEvents = "PRISM_EVENTS"

// Subject constants.
const (
	SubjectMessageSent   = "prism.events.message.sent"
	SubjectQuotaExceeded = "prism.events.quota.exceeded"
)

// MessageSent is published after a chat message has been accepted and the
// matching usage counter incremented.
type MessageSent struct {
	UserID    uuid.UUID `json:"user_id"`
	ChatID    uuid.UUID `json:"chat_id"`
	Model     string    `json:"model"`
	ProModel  bool      `json:"pro_model"`
	Timestamp time.Time `json:"timestamp"`
}

// QuotaExceeded is published when a check rejects a message for being at or
// over a daily limit.
type QuotaExceeded struct {
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	Limit     int       `json:"limit"`
	Timestamp time.Time `json:"timestamp"`
}
