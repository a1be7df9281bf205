package usage

import (
	"time"

	"github.com/google/uuid"
)

// Record matches the usage columns on the users table. The daily counters
// are windowed by calendar date: they are valid only while the corresponding
// reset timestamp falls on today's date.
type Record struct {
	UserID               uuid.UUID `json:"user_id"`
	MessageCount         int       `json:"message_count"`
	DailyMessageCount    int       `json:"daily_message_count"`
	DailyReset           time.Time `json:"daily_reset"`
	DailyProMessageCount int       `json:"daily_pro_message_count"`
	DailyProReset        time.Time `json:"daily_pro_reset"`
	Anonymous            bool      `json:"anonymous"`
	Premium              bool      `json:"premium"`
}

// CheckResult is returned by CheckUsage when the user is under their limit.
type CheckResult struct {
	Record     *Record `json:"record"`
	DailyCount int     `json:"daily_count"`
	DailyLimit int     `json:"daily_limit"`
}

// ProCheckResult is returned by CheckProUsage when the user is under the
// pro-model limit.
type ProCheckResult struct {
	DailyProCount int `json:"daily_pro_count"`
	Limit         int `json:"limit"`
}

// LimitStatus is the boolean form of a limit check, used by the rate-limits
// status endpoint. A user at or over their limit gets Allowed=false rather
// than an error.
type LimitStatus struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetTime time.Time `json:"reset_time"`
}

// Status is the combined usage summary for API display.
type Status struct {
	DailyCount    int       `json:"daily_count"`
	DailyProCount int       `json:"daily_pro_count"`
	DailyLimit    int       `json:"daily_limit"`
	Remaining     int       `json:"remaining"`
	RemainingPro  int       `json:"remaining_pro"`
	ResetTime     time.Time `json:"reset_time"`
}
