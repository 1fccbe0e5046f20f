package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type LockCategory string

const (
	Lock90  LockCategory = "90LOCK"
	Lock360 LockCategory = "360LOCK"
)

func (c LockCategory) Valid() bool {
	return c == Lock90 || c == Lock360
}

// Days returns the commitment period of the category.
func (c LockCategory) Days() int {
	switch c {
	case Lock90:
		return 90
	case Lock360:
		return 360
	default:
		return 0
	}
}

// Column is the portfolio bucket the category accrues into.
func (c LockCategory) Column() string {
	if c == Lock90 {
		return "lock_90_nctr"
	}
	return "lock_360_nctr"
}

type LockStatus string

const (
	LockStatusActive   LockStatus = "active"
	LockStatusUnlocked LockStatus = "unlocked"
)

type Lock struct {
	ID                  string          `gorm:"column:id;primaryKey;size:36"`
	UserID              string          `gorm:"column:user_id;size:128;index;not null"`
	Amount              decimal.Decimal `gorm:"column:amount;type:numeric(20,8);not null"`
	LockCategory        LockCategory    `gorm:"column:lock_category;size:16;index;not null"`
	CommitmentDays      int             `gorm:"column:commitment_days;not null"`
	LockDate            time.Time       `gorm:"column:lock_date;not null"`
	UnlockDate          time.Time       `gorm:"column:unlock_date;index;not null"`
	Status              LockStatus      `gorm:"column:status;size:16;index;not null"`
	CanUpgrade          bool            `gorm:"column:can_upgrade;not null;default:false"`
	SourceTransactionID *string         `gorm:"column:source_transaction_id;size:36"`
	UpgradedAt          *time.Time      `gorm:"column:upgraded_at"`
	UnlockedAt          *time.Time      `gorm:"column:unlocked_at"`
	CreatedAt           time.Time       `gorm:"autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime"`
}

func (Lock) TableName() string {
	return "nctr_locks"
}

// Upgradeable reports whether the lock may move from 90LOCK into 360LOCK.
func (l Lock) Upgradeable() bool {
	return l.Status == LockStatusActive && l.LockCategory == Lock90 && l.CanUpgrade
}

// Matured reports whether the commitment period is over at now.
func (l Lock) Matured(now time.Time) bool {
	return l.Status == LockStatusActive && !l.UnlockDate.After(now)
}
