package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository performs every multi-row portfolio mutation. Each method
// runs inside one database transaction; bucket decrements are conditional so
// balances never go negative.
type LedgerRepository interface {
	ApplyCredit(ctx context.Context, t *model.Transaction) (*model.Portfolio, *model.Lock, error)
	CompletePending(ctx context.Context, txID string) (*model.Transaction, *model.Portfolio, *model.Lock, error)
	FailPending(ctx context.Context, txID string) (*model.Transaction, error)
	CommitAvailable(ctx context.Context, userID string, amount decimal.Decimal, category model.LockCategory) (*model.Lock, *model.Portfolio, error)
	UpgradeLock(ctx context.Context, userID, lockID string) (*model.Lock, *model.Portfolio, error)
	UpgradeAll90(ctx context.Context, userID string) ([]model.Lock, *model.Portfolio, error)
	ReleaseLock(ctx context.Context, lockID string) (*model.Lock, *model.Portfolio, error)
	SetDB(db *gorm.DB)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *ledgerRepository) now() time.Time {
	return r.db.NowFunc()
}

// ApplyCredit inserts t and moves its amount into the pending bucket (pending
// status) or into a fresh lock or the available bucket (completed status).
func (r *ledgerRepository) ApplyCredit(ctx context.Context, t *model.Transaction) (*model.Portfolio, *model.Lock, error) {
	if r.db == nil {
		return nil, nil, ErrDBNotReady
	}
	now := r.now()
	var (
		p    *model.Portfolio
		lock *model.Lock
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensurePortfolio(tx, t.UserID); err != nil {
			return err
		}

		if t.Status == model.TxStatusPending {
			if err := tx.Create(t).Error; err != nil {
				return err
			}
			if err := addToBuckets(tx, t.UserID, map[string]interface{}{
				"pending_nctr": gorm.Expr("pending_nctr + ?", t.NCTRAmount),
			}); err != nil {
				return err
			}
		} else {
			t.CompletedAt = &now
			if t.LockCategory != nil {
				lock = model.NewLock(t.UserID, t.NCTRAmount, *t.LockCategory, now)
				lock.SourceTransactionID = &t.ID
				t.LockID = &lock.ID
			}
			if err := tx.Create(t).Error; err != nil {
				return err
			}
			if err := creditBucket(tx, t.UserID, t.NCTRAmount, lock, false); err != nil {
				return err
			}
		}

		var err error
		p, err = loadPortfolio(tx, t.UserID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return p, lock, nil
}

// CompletePending promotes a pending transaction. The amount leaves the
// pending bucket and lands in a new lock of the planned category or in
// available.
func (r *ledgerRepository) CompletePending(ctx context.Context, txID string) (*model.Transaction, *model.Portfolio, *model.Lock, error) {
	if r.db == nil {
		return nil, nil, nil, ErrDBNotReady
	}
	now := r.now()
	var (
		t    model.Transaction
		p    *model.Portfolio
		lock *model.Lock
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := pendingForUpdate(tx, txID, &t); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":       model.TxStatusCompleted,
			"completed_at": now,
		}
		if t.LockCategory != nil {
			lock = model.NewLock(t.UserID, t.NCTRAmount, *t.LockCategory, now)
			lock.SourceTransactionID = &t.ID
			updates["lock_id"] = lock.ID
		}
		res := tx.Model(&model.Transaction{}).
			Where("id = ? AND status = ?", t.ID, model.TxStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}

		if err := creditBucket(tx, t.UserID, t.NCTRAmount, lock, true); err != nil {
			return err
		}

		t.Status = model.TxStatusCompleted
		t.CompletedAt = &now
		if lock != nil {
			t.LockID = &lock.ID
		}
		var err error
		p, err = loadPortfolio(tx, t.UserID)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return &t, p, lock, nil
}

// FailPending marks a pending transaction failed and drops its amount from the
// pending bucket.
func (r *ledgerRepository) FailPending(ctx context.Context, txID string) (*model.Transaction, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	now := r.now()
	var t model.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := pendingForUpdate(tx, txID, &t); err != nil {
			return err
		}
		res := tx.Model(&model.Transaction{}).
			Where("id = ? AND status = ?", t.ID, model.TxStatusPending).
			Updates(map[string]interface{}{
				"status":       model.TxStatusFailed,
				"completed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}
		t.Status = model.TxStatusFailed
		t.CompletedAt = &now
		return decrementBucket(tx, t.UserID, "pending_nctr", t.NCTRAmount, nil)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CommitAvailable moves amount out of the available bucket into a new lock.
func (r *ledgerRepository) CommitAvailable(ctx context.Context, userID string, amount decimal.Decimal, category model.LockCategory) (*model.Lock, *model.Portfolio, error) {
	if r.db == nil {
		return nil, nil, ErrDBNotReady
	}
	now := r.now()
	lock := model.NewLock(userID, amount, category, now)
	var p *model.Portfolio
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensurePortfolio(tx, userID); err != nil {
			return err
		}
		if err := decrementBucket(tx, userID, "available_nctr", amount, map[string]interface{}{
			category.Column(): gorm.Expr(category.Column()+" + ?", amount),
		}); err != nil {
			return err
		}

		t := model.NewMovementTx(userID, model.TxTypeLocked, model.SourceCommitment, amount, category, lock.ID, now)
		t.Description = "Committed available NCTR to " + string(category)
		lock.SourceTransactionID = &t.ID
		if err := tx.Create(lock).Error; err != nil {
			return err
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}

		var err error
		p, err = loadPortfolio(tx, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return lock, p, nil
}

// UpgradeLock converts one eligible 90LOCK owned by userID into a 360LOCK.
func (r *ledgerRepository) UpgradeLock(ctx context.Context, userID, lockID string) (*model.Lock, *model.Portfolio, error) {
	if r.db == nil {
		return nil, nil, ErrDBNotReady
	}
	now := r.now()
	var (
		lock *model.Lock
		p    *model.Portfolio
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l model.Lock
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", lockID, userID).
			First(&l).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLockNotEligible
		}
		if err != nil {
			return err
		}
		if !l.Upgradeable() {
			return ErrLockNotEligible
		}
		if err := upgradeOne(tx, &l, now); err != nil {
			return err
		}
		lock = &l
		p, err = loadPortfolio(tx, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return lock, p, nil
}

// UpgradeAll90 upgrades every eligible 90LOCK of userID atomically.
func (r *ledgerRepository) UpgradeAll90(ctx context.Context, userID string) ([]model.Lock, *model.Portfolio, error) {
	if r.db == nil {
		return nil, nil, ErrDBNotReady
	}
	now := r.now()
	var (
		locks []model.Lock
		p     *model.Portfolio
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND status = ? AND lock_category = ? AND can_upgrade = ?",
				userID, model.LockStatusActive, model.Lock90, true).
			Order("lock_date ASC").
			Find(&locks).Error; err != nil {
			return err
		}
		for i := range locks {
			if err := upgradeOne(tx, &locks[i], now); err != nil {
				return err
			}
		}
		var err error
		p, err = ensurePortfolio(tx, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return locks, p, nil
}

// ReleaseLock unlocks a matured active lock and returns its amount to available.
func (r *ledgerRepository) ReleaseLock(ctx context.Context, lockID string) (*model.Lock, *model.Portfolio, error) {
	if r.db == nil {
		return nil, nil, ErrDBNotReady
	}
	now := r.now()
	var (
		l model.Lock
		p *model.Portfolio
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", lockID).First(&l).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLockNotEligible
		}
		if err != nil {
			return err
		}
		if !l.Matured(now) {
			return ErrLockNotEligible
		}

		res := tx.Model(&model.Lock{}).
			Where("id = ? AND status = ?", l.ID, model.LockStatusActive).
			Updates(map[string]interface{}{
				"status":      model.LockStatusUnlocked,
				"unlocked_at": now,
				"can_upgrade": false,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLockNotEligible
		}
		l.Status = model.LockStatusUnlocked
		l.UnlockedAt = &now
		l.CanUpgrade = false

		col := l.LockCategory.Column()
		if err := decrementBucket(tx, l.UserID, col, l.Amount, map[string]interface{}{
			"available_nctr": gorm.Expr("available_nctr + ?", l.Amount),
		}); err != nil {
			return err
		}
		t := model.NewMovementTx(l.UserID, model.TxTypeUnlocked, model.SourceLockRelease, l.Amount, l.LockCategory, l.ID, now)
		t.Description = string(l.LockCategory) + " commitment matured"
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		p, err = loadPortfolio(tx, l.UserID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &l, p, nil
}

func pendingForUpdate(tx *gorm.DB, txID string, t *model.Transaction) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND status = ?", txID, model.TxStatusPending).
		First(t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotPending
	}
	return err
}

func upgradeOne(tx *gorm.DB, l *model.Lock, now time.Time) error {
	unlock := now.AddDate(0, 0, model.Lock360.Days())
	res := tx.Model(&model.Lock{}).
		Where("id = ? AND status = ? AND lock_category = ? AND can_upgrade = ?",
			l.ID, model.LockStatusActive, model.Lock90, true).
		Updates(map[string]interface{}{
			"lock_category":   model.Lock360,
			"commitment_days": model.Lock360.Days(),
			"unlock_date":     unlock,
			"can_upgrade":     false,
			"upgraded_at":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLockNotEligible
	}

	if err := decrementBucket(tx, l.UserID, "lock_90_nctr", l.Amount, map[string]interface{}{
		"lock_360_nctr": gorm.Expr("lock_360_nctr + ?", l.Amount),
	}); err != nil {
		return err
	}

	t := model.NewMovementTx(l.UserID, model.TxTypeUpgraded, model.SourceLockUpgrade, l.Amount, model.Lock360, l.ID, now)
	t.Description = "Upgraded 90LOCK to 360LOCK"
	if err := tx.Create(t).Error; err != nil {
		return err
	}

	l.LockCategory = model.Lock360
	l.CommitmentDays = model.Lock360.Days()
	l.UnlockDate = unlock
	l.CanUpgrade = false
	l.UpgradedAt = &now
	return nil
}

// creditBucket adds amount to the lock bucket of lock (or available when lock
// is nil) and to total_earned. With fromPending the same amount leaves
// pending_nctr.
func creditBucket(tx *gorm.DB, userID string, amount decimal.Decimal, lock *model.Lock, fromPending bool) error {
	col := "available_nctr"
	if lock != nil {
		if err := tx.Create(lock).Error; err != nil {
			return err
		}
		col = lock.LockCategory.Column()
	}
	updates := map[string]interface{}{
		col:                 gorm.Expr(col+" + ?", amount),
		"total_earned_nctr": gorm.Expr("total_earned_nctr + ?", amount),
	}
	if !fromPending {
		return addToBuckets(tx, userID, updates)
	}
	return decrementBucket(tx, userID, "pending_nctr", amount, updates)
}

func addToBuckets(tx *gorm.DB, userID string, updates map[string]interface{}) error {
	res := tx.Model(&model.Portfolio{}).Where("user_id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// decrementBucket subtracts amount from col when the balance covers it and
// applies extra in the same statement.
func decrementBucket(tx *gorm.DB, userID, col string, amount decimal.Decimal, extra map[string]interface{}) error {
	updates := map[string]interface{}{
		col: gorm.Expr(col+" - ?", amount),
	}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(&model.Portfolio{}).
		Where("user_id = ? AND "+col+" >= ?", userID, amount).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return nil
}
