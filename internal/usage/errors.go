package usage

import (
	"errors"
	"fmt"
	"time"
)

// ErrUserNotFound means no usage record exists for the given user ID.
// Creating records is the provisioning layer's job, not the ledger's.
var ErrUserNotFound = errors.New("user record not found")

// Machine-readable quota error kinds, stable across the API boundary.
const (
	KindDailyLimit = "DAILY_LIMIT_REACHED"
	KindProLimit   = "DAILY_PRO_LIMIT_REACHED"
)

// QuotaError reports that a daily limit has been reached. It is an expected
// condition, not a system fault, and carries enough context for the caller
// to render a user-facing message with the reset time.
type QuotaError struct {
	Kind      string    `json:"kind"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: limit %d reached, resets at %s", e.Kind, e.Limit, e.ResetAt.Format(time.RFC3339))
}

// IsQuotaError reports whether err is a QuotaError and returns it if so.
func IsQuotaError(err error) (*QuotaError, bool) {
	var qe *QuotaError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
