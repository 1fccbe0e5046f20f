package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckin(h *harness, repo *memCheckins, at *time.Time) *checkinService {
	svc := NewCheckinService(repo, h.settingsSvc, h.ledger, nil).(*checkinService)
	svc.now = func() time.Time { return *at }
	return svc
}

func TestCheckInStreak(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	at := testNow
	svc := newCheckin(h, &memCheckins{}, &at)

	res, err := svc.CheckIn(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Checkin.Streak)
	requireDec(t, "10", res.Checkin.RewardNCTR)
	require.NotNil(t, res.Award)

	_, err = svc.CheckIn(ctx, "u1")
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
	requireDec(t, "10", h.portfolio(t, "u1").Lock360NCTR)

	at = at.AddDate(0, 0, 1)
	res, err = svc.CheckIn(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Checkin.Streak)

	// a missed day restarts the streak
	at = at.AddDate(0, 0, 2)
	res, err = svc.CheckIn(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Checkin.Streak)
	requireDec(t, "30", h.portfolio(t, "u1").Lock360NCTR)
}

func TestCheckInSeventhDayBonus(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	at := testNow
	svc := newCheckin(h, &memCheckins{}, &at)

	var last *CheckinResult
	for i := 0; i < 7; i++ {
		res, err := svc.CheckIn(ctx, "u1")
		require.NoError(t, err)
		last = res
		at = at.AddDate(0, 0, 1)
	}
	assert.Equal(t, 7, last.Checkin.Streak)
	requireDec(t, "60", last.Checkin.RewardNCTR)
	requireDec(t, "120", h.portfolio(t, "u1").Lock360NCTR)
}

func TestStreakInfo(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	at := testNow
	svc := newCheckin(h, &memCheckins{}, &at)

	info, err := svc.Streak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, info.Streak)
	assert.False(t, info.CheckedInToday)
	requireDec(t, "10", info.NextReward)

	_, err = svc.CheckIn(ctx, "u1")
	require.NoError(t, err)
	info, err = svc.Streak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Streak)
	assert.True(t, info.CheckedInToday)
	assert.Equal(t, "2026-03-01", info.LastDate)

	at = at.AddDate(0, 0, 5)
	info, err = svc.Streak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, info.Streak)
}

func TestCheckInGuardBusy(t *testing.T) {
	h := newHarness(t, nil)
	at := testNow
	svc := NewCheckinService(&memCheckins{}, h.settingsSvc, h.ledger, busyGuard{}).(*checkinService)
	svc.now = func() time.Time { return at }
	_, err := svc.CheckIn(context.Background(), "u1")
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

type downLedger struct{ LedgerService }

func (downLedger) Award(context.Context, AwardRequest) (*AwardResult, error) {
	return nil, errors.New("ledger down")
}

type stuckCheckins struct{ *memCheckins }

func (stuckCheckins) Delete(context.Context, uint64) error {
	return errors.New("connection reset")
}

func TestCheckInRollsBackWhenAwardFails(t *testing.T) {
	h := newHarness(t, nil)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &memCheckins{}
	svc := NewCheckinService(repo, h.settingsSvc, downLedger{h.ledger}, nil).(*checkinService)
	svc.now = func() time.Time { return at }

	_, err := svc.CheckIn(context.Background(), "u1")
	require.Error(t, err)
	assert.Empty(t, repo.rows)

	_, err = svc.CheckIn(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckInLogsFailedRollback(t *testing.T) {
	h := newHarness(t, nil)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	svc := NewCheckinService(stuckCheckins{&memCheckins{}}, h.settingsSvc, downLedger{h.ledger}, nil).(*checkinService)
	svc.now = func() time.Time { return at }
	svc.log = zerolog.New(&buf)

	_, err := svc.CheckIn(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "rollback check-in after failed award")
	assert.Contains(t, buf.String(), "connection reset")
	assert.Contains(t, buf.String(), "2026-03-01")
}
