package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prismchat/prism/internal/config"
)

// Ledger gates whether a user may send another chat message and records that
// they did. Standard and pro-tier counters are independent daily windows.
//
// CheckUsage and IncrementUsage are deliberately separate calls: the check
// happens before the model call is dispatched, the increment after. Two
// concurrent requests for the same user can both pass the check and both
// increment, so enforcement is best-effort, not a hard security boundary.
// Closing that race would need an atomic increment-if-under-limit at the
// store layer.
type Ledger struct {
	store  Store
	limits config.LimitsConfig
}

func NewLedger(store Store, limits config.LimitsConfig) *Ledger {
	return &Ledger{store: store, limits: limits}
}

// CheckUsage verifies the user is under their standard daily message limit.
// When the stored reset timestamp is from a previous calendar day, the
// counter is treated as zero and the reset is persisted before returning.
// A failed reset write is fatal to the check.
func (l *Ledger) CheckUsage(ctx context.Context, userID uuid.UUID) (*CheckResult, error) {
	rec, err := l.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user data: %w", err)
	}
	if rec == nil {
		return nil, ErrUserNotFound
	}

	dailyLimit := l.limits.GuestDaily
	if !rec.Anonymous {
		dailyLimit = l.limits.AuthDaily
	}

	now := time.Now()
	dailyCount := rec.DailyMessageCount
	if !sameCalendarDay(now, rec.DailyReset) {
		dailyCount = 0
		if err := l.store.UpdateDaily(ctx, userID, 0, now); err != nil {
			return nil, fmt.Errorf("resetting daily usage: %w", err)
		}
		rec.DailyMessageCount = 0
		rec.DailyReset = now
	}

	if dailyCount >= dailyLimit {
		return nil, &QuotaError{
			Kind:      KindDailyLimit,
			Limit:     dailyLimit,
			Remaining: 0,
			ResetAt:   nextDay(now),
		}
	}

	return &CheckResult{Record: rec, DailyCount: dailyCount, DailyLimit: dailyLimit}, nil
}

// IncrementUsage bumps the lifetime and daily message counters. It performs a
// fresh read and does not re-check the limit; callers run CheckUsage first.
func (l *Ledger) IncrementUsage(ctx context.Context, userID uuid.UUID) error {
	rec, err := l.store.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetching user data: %w", err)
	}
	if rec == nil {
		return ErrUserNotFound
	}

	if err := l.store.UpdateMessageCounts(ctx, userID, rec.MessageCount+1, rec.DailyMessageCount+1); err != nil {
		return fmt.Errorf("updating usage data: %w", err)
	}
	return nil
}

// CheckProUsage verifies the user is under the pro-model daily limit. The pro
// limit has no auth/guest distinction; pro access itself is gated elsewhere.
func (l *Ledger) CheckProUsage(ctx context.Context, userID uuid.UUID) (*ProCheckResult, error) {
	rec, err := l.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user data: %w", err)
	}
	if rec == nil {
		return nil, ErrUserNotFound
	}

	limit := l.limits.ProDaily
	now := time.Now()
	dailyProCount := rec.DailyProMessageCount
	if !sameCalendarDay(now, rec.DailyProReset) {
		dailyProCount = 0
		if err := l.store.UpdateProDaily(ctx, userID, 0, now); err != nil {
			return nil, fmt.Errorf("resetting pro daily usage: %w", err)
		}
	}

	if dailyProCount >= limit {
		return nil, &QuotaError{
			Kind:      KindProLimit,
			Limit:     limit,
			Remaining: 0,
			ResetAt:   nextDay(now),
		}
	}

	return &ProCheckResult{DailyProCount: dailyProCount, Limit: limit}, nil
}

// IncrementProUsage bumps only the pro daily counter.
func (l *Ledger) IncrementProUsage(ctx context.Context, userID uuid.UUID) error {
	rec, err := l.store.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetching user data: %w", err)
	}
	if rec == nil {
		return ErrUserNotFound
	}

	if err := l.store.UpdateProMessageCount(ctx, userID, rec.DailyProMessageCount+1); err != nil {
		return fmt.Errorf("incrementing pro usage: %w", err)
	}
	return nil
}

// CheckDailyMessageLimit is the boolean form of CheckUsage: a reached limit
// becomes Allowed=false instead of an error.
func (l *Ledger) CheckDailyMessageLimit(ctx context.Context, userID uuid.UUID) (*LimitStatus, error) {
	res, err := l.CheckUsage(ctx, userID)
	if err != nil {
		if qe, ok := IsQuotaError(err); ok {
			return &LimitStatus{Allowed: false, Remaining: 0, Limit: qe.Limit, ResetTime: qe.ResetAt}, nil
		}
		return nil, err
	}
	return &LimitStatus{
		Allowed:   true,
		Remaining: res.DailyLimit - res.DailyCount,
		Limit:     res.DailyLimit,
		ResetTime: nextDay(time.Now()),
	}, nil
}

// CheckProModelLimit is the boolean form of CheckProUsage.
func (l *Ledger) CheckProModelLimit(ctx context.Context, userID uuid.UUID) (*LimitStatus, error) {
	res, err := l.CheckProUsage(ctx, userID)
	if err != nil {
		if qe, ok := IsQuotaError(err); ok {
			return &LimitStatus{Allowed: false, Remaining: 0, Limit: qe.Limit, ResetTime: qe.ResetAt}, nil
		}
		return nil, err
	}
	return &LimitStatus{
		Allowed:   true,
		Remaining: res.Limit - res.DailyProCount,
		Limit:     res.Limit,
		ResetTime: nextDay(time.Now()),
	}, nil
}

// MessageUsage returns the combined usage summary for the status endpoint.
// It applies the same rollover normalization as the checks but never returns
// a quota error; remaining values can go negative if a user overran a limit.
func (l *Ledger) MessageUsage(ctx context.Context, userID uuid.UUID) (*Status, error) {
	rec, err := l.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user data: %w", err)
	}
	if rec == nil {
		return nil, ErrUserNotFound
	}

	dailyLimit := l.limits.GuestDaily
	if !rec.Anonymous {
		dailyLimit = l.limits.AuthDaily
	}

	now := time.Now()
	dailyCount := rec.DailyMessageCount
	if !sameCalendarDay(now, rec.DailyReset) {
		dailyCount = 0
		if err := l.store.UpdateDaily(ctx, userID, 0, now); err != nil {
			return nil, fmt.Errorf("resetting daily usage: %w", err)
		}
	}

	dailyProCount := rec.DailyProMessageCount
	if !sameCalendarDay(now, rec.DailyProReset) {
		dailyProCount = 0
		if err := l.store.UpdateProDaily(ctx, userID, 0, now); err != nil {
			return nil, fmt.Errorf("resetting pro daily usage: %w", err)
		}
	}

	return &Status{
		DailyCount:    dailyCount,
		DailyProCount: dailyProCount,
		DailyLimit:    dailyLimit,
		Remaining:     dailyLimit - dailyCount,
		RemainingPro:  l.limits.ProDaily - dailyProCount,
		ResetTime:     nextDay(now),
	}, nil
}

// sameCalendarDay compares UTC calendar dates, not a rolling 24h window.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// nextDay returns the next UTC midnight after t, when the daily windows roll.
func nextDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
