package service

import (
	"context"
	"testing"

	"github.com/nctr-alliance/garden-backend/internal/event"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed90(t *testing.T, h *harness, uid string, amount int64) *model.Lock {
	t.Helper()
	res, err := h.ledger.Award(context.Background(), AwardRequest{UserID: uid, Source: model.SourceFreeTrial, Amount: decimal.NewFromInt(amount)})
	require.NoError(t, err)
	require.NotNil(t, res.Lock)
	return res.Lock
}

func TestCommitInsufficientBalance(t *testing.T) {
	h := newHarness(t, nil)
	_, _, err := h.locks.Commit(context.Background(), "u1", decimal.NewFromInt(10), model.Lock90)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestCommitMovesAvailable(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.ledger.Award(ctx, AwardRequest{UserID: "u1", Source: model.SourceManualCredit, Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)

	lock, p, err := h.locks.Commit(ctx, "u1", decimal.NewFromInt(120), model.Lock90)
	require.NoError(t, err)
	assert.Equal(t, model.Lock90, lock.LockCategory)
	assert.True(t, lock.CanUpgrade)
	requireDec(t, "180", p.AvailableNCTR)
	requireDec(t, "120", p.Lock90NCTR)
	assert.Contains(t, h.events.Types(), event.TypeLockCommitted)
}

func TestCommitRejectsBadInput(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, _, err := h.locks.Commit(ctx, "u1", decimal.Zero, model.Lock90)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, _, err = h.locks.Commit(ctx, "u1", decimal.NewFromInt(1), model.LockCategory("30LOCK"))
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestUpgradeTo360(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	l := seed90(t, h, "u1", 1200)

	_, _, err := h.locks.UpgradeTo360(ctx, "u2", l.ID)
	require.ErrorIs(t, err, ErrForbidden)
	_, _, err = h.locks.UpgradeTo360(ctx, "u1", "missing")
	require.ErrorIs(t, err, ErrNotFound)

	up, p, err := h.locks.UpgradeTo360(ctx, "u1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Lock360, up.LockCategory)
	assert.Equal(t, 360, up.CommitmentDays)
	assert.Equal(t, testNow.AddDate(0, 0, 360), up.UnlockDate)
	assert.False(t, up.CanUpgrade)
	requireDec(t, "0", p.Lock90NCTR)
	requireDec(t, "1200", p.Lock360NCTR)

	assert.Equal(t, "silver", h.portfolio(t, "u1").OpportunityStatus)
	assert.Contains(t, h.notes.types("u1"), model.NotificationLockUpgraded)
	assert.Contains(t, h.events.Types(), event.TypeLockUpgraded)

	_, _, err = h.locks.UpgradeTo360(ctx, "u1", l.ID)
	require.ErrorIs(t, err, ErrNotUpgradeable)
	requireDec(t, "1200", h.portfolio(t, "u1").Lock360NCTR)
}

func TestUpgradeAll90To360(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	seed90(t, h, "u1", 100)
	seed90(t, h, "u1", 250)
	seed90(t, h, "u2", 999)

	sum, err := h.locks.UpgradeAll90To360(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	requireDec(t, "350", sum.Total)
	requireDec(t, "350", sum.Portfolio.Lock360NCTR)
	requireDec(t, "0", sum.Portfolio.Lock90NCTR)
	requireDec(t, "999", h.portfolio(t, "u2").Lock90NCTR)

	sum, err = h.locks.UpgradeAll90To360(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)
}

func TestReleaseMaturedOnce(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.profiles.Create(ctx, &model.Profile{UserID: "u1", Email: "u1@example.com", ReferralCode: "BBBB2222"}))
	seed90(t, h, "u1", 80)
	_, err := h.ledger.Award(ctx, AwardRequest{UserID: "u1", Source: model.SourceReferral, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	sum, err := h.locks.ReleaseMatured(ctx, testNow, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Scanned)

	mailed := h.outbox.Len()
	later := testNow.AddDate(0, 0, 91)
	h.store.now = later
	sum, err = h.locks.ReleaseMatured(ctx, later, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Released)
	requireDec(t, "80", sum.Total)

	p := h.portfolio(t, "u1")
	requireDec(t, "80", p.AvailableNCTR)
	requireDec(t, "0", p.Lock90NCTR)
	requireDec(t, "10", p.Lock360NCTR)
	assert.Contains(t, h.notes.types("u1"), model.NotificationLockReleased)
	assert.Contains(t, h.events.Types(), event.TypeLockReleased)
	assert.Equal(t, mailed+1, h.outbox.Len())

	sum, err = h.locks.ReleaseMatured(ctx, later, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Released)
	requireDec(t, "80", h.portfolio(t, "u1").AvailableNCTR)
}

func TestReleaseMaturedResumesAfterCursor(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		seed90(t, h, "u1", 10)
	}
	later := testNow.AddDate(0, 0, 91)
	h.store.now = later

	first, err := h.locks.ReleaseMatured(ctx, later, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Scanned)
	require.NotNil(t, first.Next)

	second, err := h.locks.ReleaseMatured(ctx, later, first.Next, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Scanned)
	assert.Equal(t, 1, second.Released)
	requireDec(t, "30", h.portfolio(t, "u1").AvailableNCTR)

	done, err := h.locks.ReleaseMatured(ctx, later, second.Next, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, done.Scanned)
	assert.Nil(t, done.Next)
}

func TestListLocksValidatesStatus(t *testing.T) {
	h := newHarness(t, nil)
	seed90(t, h, "u1", 5)
	_, err := h.locks.List(context.Background(), "u1", model.LockStatus("frozen"))
	require.ErrorIs(t, err, ErrInvalidRequest)

	list, err := h.locks.List(context.Background(), "u1", model.LockStatusActive)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
