// Package jobs runs the periodic ledger maintenance: matured lock release and
// partner syncs. The same Runner backs the cron schedule and the admin
// endpoints.
package jobs

import (
	"context"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/metrics"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/rs/zerolog"
)

const (
	JobRelease  = "release_matured"
	JobLoyalize = "loyalize_transactions"
	JobStores   = "loyalize_stores"
	JobImpact   = "impact_campaigns"

	defaultBatch    = 500
	defaultLookback = 30 * 24 * time.Hour
)

type Runner struct {
	locks    service.LockService
	sync     service.SyncService
	lookback time.Duration
	batch    int
	now      func() time.Time
	log      zerolog.Logger
}

// NewRunner builds a Runner. lookback is the Loyalize transaction window used
// when no explicit range is given.
func NewRunner(locks service.LockService, sync service.SyncService, lookback time.Duration) *Runner {
	if lookback <= 0 {
		lookback = defaultLookback
	}
	return &Runner{
		locks:    locks,
		sync:     sync,
		lookback: lookback,
		batch:    defaultBatch,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logging.Component("jobs"),
	}
}

func (r *Runner) record(job string, start time.Time, err error) {
	metrics.RecordJob(job, err == nil, time.Since(start))
	if err != nil {
		r.log.Error().Err(err).Str("job", job).Msg("job failed")
	}
}

// ReleaseMatured unlocks every lock whose commitment ended, in batches until
// none are left.
func (r *Runner) ReleaseMatured(ctx context.Context) (*service.ReleaseSummary, error) {
	start := time.Now()
	now := r.now()
	total := &service.ReleaseSummary{}
	var (
		err   error
		after *repository.MaturedCursor
	)
	for {
		var sum *service.ReleaseSummary
		sum, err = r.locks.ReleaseMatured(ctx, now, after, r.batch)
		if err != nil {
			break
		}
		total.Scanned += sum.Scanned
		total.Released += sum.Released
		total.Skipped += sum.Skipped
		total.Failed += sum.Failed
		total.Total = total.Total.Add(sum.Total)
		// a short batch means every matured lock has been visited
		if sum.Scanned < r.batch || sum.Next == nil {
			break
		}
		after = sum.Next
	}
	r.record(JobRelease, start, err)
	if err != nil {
		return total, err
	}
	r.log.Info().Int("released", total.Released).Int("failed", total.Failed).
		Str("total", total.Total.String()).Msg("matured locks released")
	return total, nil
}

// SyncLoyalize pulls transactions in [from, to). Zero values default to the
// lookback window ending now.
func (r *Runner) SyncLoyalize(ctx context.Context, from, to time.Time) (*service.SyncSummary, error) {
	start := time.Now()
	if to.IsZero() {
		to = r.now()
	}
	if from.IsZero() {
		from = to.Add(-r.lookback)
	}
	sum, err := r.sync.SyncLoyalizeTransactions(ctx, from, to)
	r.record(JobLoyalize, start, err)
	if err == nil {
		r.log.Info().Int("fetched", sum.Fetched).Int("credited", sum.Credited).Int("pending", sum.Pending).
			Int("promoted", sum.Promoted).Int("failed", sum.Failed).Msg("loyalize sync done")
	}
	return sum, err
}

func (r *Runner) SyncStores(ctx context.Context) (*service.BrandSyncSummary, error) {
	start := time.Now()
	sum, err := r.sync.SyncLoyalizeStores(ctx)
	r.record(JobStores, start, err)
	return sum, err
}

func (r *Runner) SyncImpact(ctx context.Context) (*service.BrandSyncSummary, error) {
	start := time.Now()
	sum, err := r.sync.SyncImpactCampaigns(ctx)
	r.record(JobImpact, start, err)
	return sum, err
}
