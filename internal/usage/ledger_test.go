package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismchat/prism/internal/config"
)

var testLimits = config.LimitsConfig{AuthDaily: 1000, GuestDaily: 5, ProDaily: 500}

// fakeStore is an in-memory Store for ledger tests.
type fakeStore struct {
	records map[uuid.UUID]*Record

	getErr    error
	updateErr error

	dailyUpdates   int
	proUpdates     int
	countUpdates   int
	proCountWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[uuid.UUID]*Record)}
}

func (s *fakeStore) GetByUserID(_ context.Context, userID uuid.UUID) (*Record, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	rec, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) UpdateDaily(_ context.Context, userID uuid.UUID, count int, resetAt time.Time) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.dailyUpdates++
	if rec, ok := s.records[userID]; ok {
		rec.DailyMessageCount = count
		rec.DailyReset = resetAt
	}
	return nil
}

func (s *fakeStore) UpdateProDaily(_ context.Context, userID uuid.UUID, count int, resetAt time.Time) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.proUpdates++
	if rec, ok := s.records[userID]; ok {
		rec.DailyProMessageCount = count
		rec.DailyProReset = resetAt
	}
	return nil
}

func (s *fakeStore) UpdateMessageCounts(_ context.Context, userID uuid.UUID, messageCount, dailyCount int) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.countUpdates++
	if rec, ok := s.records[userID]; ok {
		rec.MessageCount = messageCount
		rec.DailyMessageCount = dailyCount
	}
	return nil
}

func (s *fakeStore) UpdateProMessageCount(_ context.Context, userID uuid.UUID, count int) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.proCountWrites++
	if rec, ok := s.records[userID]; ok {
		rec.DailyProMessageCount = count
	}
	return nil
}

func seedRecord(s *fakeStore, anonymous bool, daily, pro int) uuid.UUID {
	id := uuid.New()
	now := time.Now()
	s.records[id] = &Record{
		UserID:               id,
		MessageCount:         daily,
		DailyMessageCount:    daily,
		DailyReset:           now,
		DailyProMessageCount: pro,
		DailyProReset:        now,
		Anonymous:            anonymous,
	}
	return id
}

func TestCheckUsage_AuthenticatedUnderLimit(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 5, 0)
	ledger := NewLedger(store, testLimits)

	res, err := ledger.CheckUsage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 5, res.DailyCount)
	assert.Equal(t, 1000, res.DailyLimit)
	assert.False(t, res.Record.Anonymous)
}

func TestCheckUsage_GuestUnderLimit(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, true, 3, 0)
	ledger := NewLedger(store, testLimits)

	res, err := ledger.CheckUsage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 3, res.DailyCount)
	assert.Equal(t, 5, res.DailyLimit)
}

func TestCheckUsage_GuestAtLimit(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, true, 5, 0)
	ledger := NewLedger(store, testLimits)

	_, err := ledger.CheckUsage(context.Background(), id)
	qe, ok := IsQuotaError(err)
	require.True(t, ok, "expected QuotaError, got %v", err)
	assert.Equal(t, KindDailyLimit, qe.Kind)
	assert.Equal(t, 5, qe.Limit)
	assert.Equal(t, 0, qe.Remaining)
	assert.True(t, qe.ResetAt.After(time.Now()))
}

func TestCheckUsage_AuthenticatedAtLimit(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 1000, 0)
	ledger := NewLedger(store, testLimits)

	_, err := ledger.CheckUsage(context.Background(), id)
	qe, ok := IsQuotaError(err)
	require.True(t, ok)
	assert.Equal(t, KindDailyLimit, qe.Kind)
	assert.Equal(t, 1000, qe.Limit)
}

func TestCheckUsage_OneBelowLimitSucceeds(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 999, 0)
	ledger := NewLedger(store, testLimits)

	res, err := ledger.CheckUsage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 999, res.DailyCount)
}

func TestCheckUsage_GuestVsAuthenticatedSameCount(t *testing.T) {
	store := newFakeStore()
	guest := seedRecord(store, true, 10, 0)
	authed := seedRecord(store, false, 10, 0)
	ledger := NewLedger(store, testLimits)

	_, err := ledger.CheckUsage(context.Background(), guest)
	_, ok := IsQuotaError(err)
	assert.True(t, ok, "guest at 10 should exceed the guest limit")

	res, err := ledger.CheckUsage(context.Background(), authed)
	require.NoError(t, err)
	assert.Equal(t, 10, res.DailyCount)
}

func TestCheckUsage_DayRolloverResetsCounter(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 1000, 0)
	store.records[id].DailyReset = time.Now().AddDate(0, 0, -1)
	ledger := NewLedger(store, testLimits)

	res, err := ledger.CheckUsage(context.Background(), id)
	require.NoError(t, err, "a stale window must not count against today's limit")
	assert.Equal(t, 0, res.DailyCount)
	assert.Equal(t, 1, store.dailyUpdates, "reset must be persisted on the read path")
	assert.Equal(t, 0, store.records[id].DailyMessageCount)
}

func TestCheckUsage_RolloverResetWriteFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 10, 0)
	store.records[id].DailyReset = time.Now().AddDate(0, 0, -1)
	store.updateErr = errors.New("connection reset")
	ledger := NewLedger(store, testLimits)

	_, err := ledger.CheckUsage(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resetting daily usage")
	assert.ErrorIs(t, err, store.updateErr)
}

func TestCheckUsage_UserNotFound(t *testing.T) {
	ledger := NewLedger(newFakeStore(), testLimits)

	_, err := ledger.CheckUsage(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCheckUsage_StoreFetchFailure(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("database error")
	ledger := NewLedger(store, testLimits)

	_, err := ledger.CheckUsage(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching user data")
	assert.ErrorIs(t, err, store.getErr)
}

func TestIncrementUsage(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 5, 0)
	store.records[id].MessageCount = 50
	ledger := NewLedger(store, testLimits)

	require.NoError(t, ledger.IncrementUsage(context.Background(), id))
	assert.Equal(t, 51, store.records[id].MessageCount)
	assert.Equal(t, 6, store.records[id].DailyMessageCount)
}

func TestIncrementUsage_UserNotFound(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, testLimits)

	err := ledger.IncrementUsage(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 0, store.countUpdates, "no write on missing user")
}

func TestIncrementUsage_WriteFailure(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 5, 0)
	store.updateErr = errors.New("update rejected")
	ledger := NewLedger(store, testLimits)

	err := ledger.IncrementUsage(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "updating usage data")
}

func TestCheckProUsage_UnderLimit(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 0, 100)
	ledger := NewLedger(store, testLimits)

	res, err := ledger.CheckProUsage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 100, res.DailyProCount)
	assert.Equal(t, 500, res.Limit)
}

func TestCheckProUsage_AtLimit(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 0, 500)
	ledger := NewLedger(store, testLimits)

	_, err := ledger.CheckProUsage(context.Background(), id)
	qe, ok := IsQuotaError(err)
	require.True(t, ok)
	assert.Equal(t, KindProLimit, qe.Kind)
	assert.Equal(t, 500, qe.Limit)
}

func TestCheckProUsage_DayRollover(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 0, 400)
	store.records[id].DailyProReset = time.Now().AddDate(0, 0, -1)
	ledger := NewLedger(store, testLimits)

	res, err := ledger.CheckProUsage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, res.DailyProCount)
	assert.Equal(t, 1, store.proUpdates)
}

func TestCheckProUsage_SameLimitForGuests(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, true, 0, 100)
	ledger := NewLedger(store, testLimits)

	res, err := ledger.CheckProUsage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 500, res.Limit, "pro limit does not vary by auth tier")
}

func TestIncrementProUsage(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 3, 50)
	ledger := NewLedger(store, testLimits)

	require.NoError(t, ledger.IncrementProUsage(context.Background(), id))
	assert.Equal(t, 51, store.records[id].DailyProMessageCount)
	assert.Equal(t, 3, store.records[id].DailyMessageCount, "standard counter untouched")
}

func TestIncrementProUsage_UserNotFound(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, testLimits)

	err := ledger.IncrementProUsage(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 0, store.proCountWrites)
}

func TestIncrementProUsage_WriteFailure(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 0, 50)
	store.updateErr = errors.New("update rejected")
	ledger := NewLedger(store, testLimits)

	err := ledger.IncrementProUsage(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incrementing pro usage")
}

func TestCheckDailyMessageLimit(t *testing.T) {
	store := newFakeStore()
	under := seedRecord(store, false, 5, 0)
	over := seedRecord(store, true, 5, 0)
	ledger := NewLedger(store, testLimits)

	status, err := ledger.CheckDailyMessageLimit(context.Background(), under)
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 995, status.Remaining)
	assert.Equal(t, 1000, status.Limit)

	status, err = ledger.CheckDailyMessageLimit(context.Background(), over)
	require.NoError(t, err, "a reached limit is a status, not an error")
	assert.False(t, status.Allowed)
	assert.Equal(t, 0, status.Remaining)
	assert.Equal(t, 5, status.Limit)
}

func TestCheckProModelLimit(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 0, 5)
	ledger := NewLedger(store, testLimits)

	status, err := ledger.CheckProModelLimit(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 495, status.Remaining)
	assert.Equal(t, 500, status.Limit)
}

func TestMessageUsage(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, false, 7, 2)
	ledger := NewLedger(store, testLimits)

	status, err := ledger.MessageUsage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 7, status.DailyCount)
	assert.Equal(t, 2, status.DailyProCount)
	assert.Equal(t, 1000, status.DailyLimit)
	assert.Equal(t, 993, status.Remaining)
	assert.Equal(t, 498, status.RemainingPro)
}

func TestMessageUsage_OverrunGoesNegative(t *testing.T) {
	store := newFakeStore()
	id := seedRecord(store, true, 8, 0)
	ledger := NewLedger(store, testLimits)

	status, err := ledger.MessageUsage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, -3, status.Remaining)
}

func TestSameCalendarDay(t *testing.T) {
	noon := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	assert.True(t, sameCalendarDay(noon, noon.Add(11*time.Hour)))
	assert.False(t, sameCalendarDay(noon, noon.Add(13*time.Hour)))
	assert.False(t, sameCalendarDay(noon, noon.AddDate(0, 0, -1)), "not a rolling 24h window")
}

func TestNextDay(t *testing.T) {
	noon := time.Date(2026, 8, 30, 12, 34, 56, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), nextDay(noon))
}
