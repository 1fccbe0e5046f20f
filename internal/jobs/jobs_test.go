package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocks struct {
	service.LockService
	batches []service.ReleaseSummary
	calls   int
	cursors []*repository.MaturedCursor
	err     error
}

func (f *fakeLocks) ReleaseMatured(_ context.Context, _ time.Time, after *repository.MaturedCursor, _ int) (*service.ReleaseSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.cursors = append(f.cursors, after)
	if f.calls >= len(f.batches) {
		f.calls++
		return &service.ReleaseSummary{}, nil
	}
	s := f.batches[f.calls]
	f.calls++
	return &s, nil
}

type fakeSync struct {
	from, to time.Time
	stores   int
	impact   int
}

func (f *fakeSync) SyncLoyalizeTransactions(_ context.Context, from, to time.Time) (*service.SyncSummary, error) {
	f.from, f.to = from, to
	return &service.SyncSummary{Fetched: 3, Credited: 2}, nil
}

func (f *fakeSync) SyncLoyalizeStores(context.Context) (*service.BrandSyncSummary, error) {
	f.stores++
	return &service.BrandSyncSummary{}, nil
}

func (f *fakeSync) SyncImpactCampaigns(context.Context) (*service.BrandSyncSummary, error) {
	f.impact++
	return nil, service.ErrUnavailable
}

func (f *fakeSync) ListBrands(context.Context, model.BrandSource, int, int) ([]model.Brand, int64, error) {
	return nil, 0, nil
}

func TestReleaseMaturedDrainsBatches(t *testing.T) {
	c1 := &repository.MaturedCursor{ID: "lock-2"}
	locks := &fakeLocks{batches: []service.ReleaseSummary{
		{Scanned: 2, Released: 2, Total: decimal.NewFromInt(30), Next: c1},
		{Scanned: 1, Released: 1, Total: decimal.NewFromInt(5), Next: &repository.MaturedCursor{ID: "lock-3"}},
	}}
	r := NewRunner(locks, &fakeSync{}, 0)
	r.batch = 2

	sum, err := r.ReleaseMatured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, locks.calls)
	assert.Equal(t, []*repository.MaturedCursor{nil, c1}, locks.cursors)
	assert.Equal(t, 3, sum.Released)
	assert.True(t, decimal.NewFromInt(35).Equal(sum.Total))
}

func TestReleaseMaturedPagesPastFailingLocks(t *testing.T) {
	c1 := &repository.MaturedCursor{ID: "stuck-2"}
	c2 := &repository.MaturedCursor{ID: "lock-4"}
	locks := &fakeLocks{batches: []service.ReleaseSummary{
		{Scanned: 2, Failed: 2, Total: decimal.Zero, Next: c1},
		{Scanned: 2, Released: 2, Total: decimal.NewFromInt(20), Next: c2},
		{Scanned: 0, Total: decimal.Zero},
	}}
	r := NewRunner(locks, &fakeSync{}, 0)
	r.batch = 2

	sum, err := r.ReleaseMatured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, locks.calls)
	assert.Equal(t, []*repository.MaturedCursor{nil, c1, c2}, locks.cursors)
	assert.Equal(t, 2, sum.Released)
	assert.Equal(t, 2, sum.Failed)
}

func TestReleaseMaturedError(t *testing.T) {
	r := NewRunner(&fakeLocks{err: errors.New("boom")}, &fakeSync{}, 0)
	_, err := r.ReleaseMatured(context.Background())
	assert.Error(t, err)
}

func TestSyncLoyalizeDefaultWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := &fakeSync{}
	r := NewRunner(&fakeLocks{}, s, 48*time.Hour)
	r.now = func() time.Time { return now }

	sum, err := r.SyncLoyalize(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Credited)
	assert.Equal(t, now, s.to)
	assert.Equal(t, now.Add(-48*time.Hour), s.from)

	from := now.Add(-time.Hour)
	_, err = r.SyncLoyalize(context.Background(), from, now)
	require.NoError(t, err)
	assert.Equal(t, from, s.from)
}

func TestNewScheduler(t *testing.T) {
	r := NewRunner(&fakeLocks{}, &fakeSync{}, 0)

	s, err := NewScheduler(r, Schedule{Release: "@every 15m", Sync: "@every 1h", Brands: ""})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	_, err = NewScheduler(r, Schedule{Release: "not a spec"})
	assert.Error(t, err)
}
