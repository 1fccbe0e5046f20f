package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/event"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/mail"
	"github.com/nctr-alliance/garden-backend/internal/metrics"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UpgradeSummary struct {
	Count     int
	Total     decimal.Decimal
	Locks     []model.Lock
	Portfolio *model.Portfolio
}

type ReleaseSummary struct {
	Scanned  int
	Released int
	Skipped  int
	Failed   int
	Total    decimal.Decimal
	// Next resumes the scan after the last lock visited; nil when none were.
	Next *repository.MaturedCursor
}

type LockService interface {
	List(ctx context.Context, userID string, status model.LockStatus) ([]model.Lock, error)
	Commit(ctx context.Context, userID string, amount decimal.Decimal, category model.LockCategory) (*model.Lock, *model.Portfolio, error)
	UpgradeTo360(ctx context.Context, userID, lockID string) (*model.Lock, *model.Portfolio, error)
	UpgradeAll90To360(ctx context.Context, userID string) (*UpgradeSummary, error)
	ReleaseMatured(ctx context.Context, now time.Time, after *repository.MaturedCursor, batch int) (*ReleaseSummary, error)
}

type lockService struct {
	locks    repository.LockRepository
	ledger   repository.LedgerRepository
	profiles repository.ProfileRepository
	status   StatusService
	notifier NotificationService
	mailer   mail.Mailer
	events   event.Publisher
	log      zerolog.Logger
}

func NewLockService(
	locks repository.LockRepository,
	ledger repository.LedgerRepository,
	profiles repository.ProfileRepository,
	status StatusService,
	notifier NotificationService,
	mailer mail.Mailer,
	events event.Publisher,
) LockService {
	if mailer == nil {
		mailer = mail.NopMailer{}
	}
	if events == nil {
		events = event.NopPublisher{}
	}
	return &lockService{
		locks:    locks,
		ledger:   ledger,
		profiles: profiles,
		status:   status,
		notifier: notifier,
		mailer:   mailer,
		events:   events,
		log:      logging.Component("locks"),
	}
}

func (s *lockService) List(ctx context.Context, userID string, status model.LockStatus) ([]model.Lock, error) {
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	if status != "" && status != model.LockStatusActive && status != model.LockStatusUnlocked {
		return nil, ErrInvalidRequest
	}
	return s.locks.ListByUser(ctx, userID, status)
}

func (s *lockService) Commit(ctx context.Context, userID string, amount decimal.Decimal, category model.LockCategory) (*model.Lock, *model.Portfolio, error) {
	if userID == "" || !category.Valid() {
		return nil, nil, ErrInvalidRequest
	}
	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	lock, p, err := s.ledger.CommitAvailable(ctx, userID, amount.Round(8), category)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, nil, ErrInsufficientBalance
		}
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	metrics.RecordLock("commit", 1)
	s.publish(ctx, event.TypeLockCommitted, lock)
	if category == model.Lock360 {
		s.refresh(ctx, userID)
	}
	return lock, p, nil
}

func (s *lockService) UpgradeTo360(ctx context.Context, userID, lockID string) (*model.Lock, *model.Portfolio, error) {
	if userID == "" || lockID == "" {
		return nil, nil, ErrInvalidRequest
	}
	existing, err := s.locks.FindByID(ctx, lockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if existing.UserID != userID {
		return nil, nil, ErrForbidden
	}
	if !existing.Upgradeable() {
		return nil, nil, ErrNotUpgradeable
	}

	lock, p, err := s.ledger.UpgradeLock(ctx, userID, lockID)
	if err != nil {
		if errors.Is(err, repository.ErrLockNotEligible) || errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, nil, ErrNotUpgradeable
		}
		return nil, nil, fmt.Errorf("upgrade lock: %w", err)
	}

	metrics.RecordLock("upgrade", 1)
	s.notifier.Notify(ctx, userID, model.NotificationLockUpgraded,
		"Lock upgraded to 360LOCK",
		lock.Amount.StringFixed(2)+" NCTR now counts toward your status until "+lock.UnlockDate.Format("Jan 2, 2006")+".",
		&lock.ID, nil)
	s.publish(ctx, event.TypeLockUpgraded, lock)
	s.refresh(ctx, userID)
	return lock, p, nil
}

func (s *lockService) UpgradeAll90To360(ctx context.Context, userID string) (*UpgradeSummary, error) {
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	locks, p, err := s.ledger.UpgradeAll90(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrLockNotEligible) || errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, ErrNotUpgradeable
		}
		return nil, fmt.Errorf("upgrade all: %w", err)
	}
	sum := &UpgradeSummary{Count: len(locks), Total: decimal.Zero, Locks: locks, Portfolio: p}
	for i := range locks {
		sum.Total = sum.Total.Add(locks[i].Amount)
	}
	if sum.Count == 0 {
		return sum, nil
	}

	metrics.RecordLock("upgrade", sum.Count)
	s.notifier.Notify(ctx, userID, model.NotificationLockUpgraded,
		fmt.Sprintf("%d locks upgraded to 360LOCK", sum.Count),
		sum.Total.StringFixed(2)+" NCTR now counts toward your status.",
		nil, nil)
	for i := range locks {
		s.publish(ctx, event.TypeLockUpgraded, &locks[i])
	}
	s.refresh(ctx, userID)
	return sum, nil
}

// ReleaseMatured unlocks up to batch matured locks following after. Individual
// failures are counted and logged; the run continues.
func (s *lockService) ReleaseMatured(ctx context.Context, now time.Time, after *repository.MaturedCursor, batch int) (*ReleaseSummary, error) {
	due, err := s.locks.ListMatured(ctx, now, after, batch)
	if err != nil {
		return nil, err
	}
	l := logging.FromContext(ctx, s.log)
	sum := &ReleaseSummary{Scanned: len(due), Total: decimal.Zero}
	if len(due) > 0 {
		sum.Next = repository.CursorAfter(due[len(due)-1])
	}
	refreshed := map[string]bool{}
	for _, d := range due {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		lock, _, err := s.ledger.ReleaseLock(ctx, d.ID)
		if err != nil {
			if errors.Is(err, repository.ErrLockNotEligible) {
				sum.Skipped++
				continue
			}
			sum.Failed++
			l.Error().Err(err).Str("lock_id", d.ID).Msg("release lock")
			continue
		}
		sum.Released++
		sum.Total = sum.Total.Add(lock.Amount)

		s.notifier.Notify(ctx, lock.UserID, model.NotificationLockReleased,
			string(lock.LockCategory)+" commitment matured",
			lock.Amount.StringFixed(2)+" NCTR moved to your available balance.",
			&lock.ID, nil)
		s.publish(ctx, event.TypeLockReleased, lock)
		s.emailRelease(ctx, lock)
		if lock.LockCategory == model.Lock360 && !refreshed[lock.UserID] {
			refreshed[lock.UserID] = true
			s.refresh(ctx, lock.UserID)
		}
	}
	metrics.RecordLock("release", sum.Released)
	if sum.Scanned > 0 {
		l.Info().Int("scanned", sum.Scanned).Int("released", sum.Released).Int("failed", sum.Failed).Msg("matured locks released")
	}
	return sum, nil
}

func (s *lockService) emailRelease(ctx context.Context, lock *model.Lock) {
	prof, err := s.profiles.Get(ctx, lock.UserID)
	if err != nil || prof.Email == "" {
		return
	}
	subject, body := mail.LockReleasedEmail(prof.DisplayName, lock.Amount.StringFixed(2), string(lock.LockCategory))
	if err := s.mailer.Send(ctx, prof.Email, subject, body); err != nil {
		logging.FromContext(ctx, s.log).Warn().Err(err).Str("lock_id", lock.ID).Msg("release email")
	}
}

func (s *lockService) refresh(ctx context.Context, userID string) {
	if _, _, err := s.status.Refresh(ctx, userID); err != nil {
		logging.FromContext(ctx, s.log).Warn().Err(err).Msg("status refresh")
	}
}

func (s *lockService) publish(ctx context.Context, typ string, lock *model.Lock) {
	err := s.events.Publish(ctx, event.New(typ, lock.UserID, map[string]interface{}{
		"lock_id":       lock.ID,
		"amount":        lock.Amount.String(),
		"lock_category": string(lock.LockCategory),
		"unlock_date":   lock.UnlockDate.UTC().Format(time.RFC3339),
	}))
	if err != nil {
		logging.FromContext(ctx, s.log).Warn().Err(err).Str("type", typ).Msg("publish lock event")
	}
}
