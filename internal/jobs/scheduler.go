package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const jobTimeout = 10 * time.Minute

// Schedule holds cron specs. An empty spec disables the job.
type Schedule struct {
	Release string
	Sync    string
	Brands  string
}

type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler registers the jobs on a cron that skips a run while the
// previous one is still going.
func NewScheduler(r *Runner, s Schedule) (*Scheduler, error) {
	log := logging.Component("scheduler")
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{log}),
		cron.SkipIfStillRunning(cronLogger{log}),
	))
	add := func(spec, name string, fn func(ctx context.Context) error) error {
		if spec == "" {
			log.Info().Str("job", name).Msg("job disabled")
			return nil
		}
		_, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := fn(ctx); err != nil && !errors.Is(err, service.ErrUnavailable) {
				log.Error().Err(err).Str("job", name).Msg("scheduled run failed")
			}
		})
		return err
	}
	if err := add(s.Release, JobRelease, func(ctx context.Context) error {
		_, err := r.ReleaseMatured(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	if err := add(s.Sync, JobLoyalize, func(ctx context.Context) error {
		_, err := r.SyncLoyalize(ctx, time.Time{}, time.Time{})
		return err
	}); err != nil {
		return nil, err
	}
	if err := add(s.Brands, JobStores, func(ctx context.Context) error {
		_, sErr := r.SyncStores(ctx)
		_, iErr := r.SyncImpact(ctx)
		return errors.Join(sErr, iErr)
	}); err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
