package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TransactionType string

const (
	TxTypeEarned     TransactionType = "earned"
	TxTypeLocked     TransactionType = "locked"
	TxTypeUpgraded   TransactionType = "upgraded"
	TxTypeUnlocked   TransactionType = "unlocked"
	TxTypeAdjustment TransactionType = "adjustment"
)

type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusFailed    TransactionStatus = "failed"
)

type Source string

const (
	SourceAffiliatePurchase Source = "affiliate_purchase"
	SourceReferral          Source = "referral"
	SourceDailyCheckin      Source = "daily_checkin"
	SourceTokenPurchase     Source = "token_purchase"
	SourceManualCredit      Source = "manual_credit"
	SourceLearning          Source = "learning"
	SourceFreeTrial         Source = "free_trial"
	SourceNCTRLive          Source = "nctr_live"
	SourceSignupBonus       Source = "signup_bonus"
	SourceCommitment        Source = "commitment"
	SourceLockUpgrade       Source = "lock_upgrade"
	SourceLockRelease       Source = "lock_release"
)

var earnSources = map[Source]bool{
	SourceAffiliatePurchase: true,
	SourceReferral:          true,
	SourceDailyCheckin:      true,
	SourceTokenPurchase:     true,
	SourceManualCredit:      true,
	SourceLearning:          true,
	SourceFreeTrial:         true,
	SourceNCTRLive:          true,
	SourceSignupBonus:       true,
}

// Earnable reports whether NCTR can be awarded under this source tag.
func (s Source) Earnable() bool {
	return earnSources[s]
}

// Transaction is append-only. Rows in TxStatusCompleted are never updated.
type Transaction struct {
	ID                    string            `gorm:"column:id;primaryKey;size:36"`
	UserID                string            `gorm:"column:user_id;size:128;index;not null"`
	TransactionType       TransactionType   `gorm:"column:transaction_type;size:16;not null"`
	Source                Source            `gorm:"column:source;size:32;index;not null"`
	NCTRAmount            decimal.Decimal   `gorm:"column:nctr_amount;type:numeric(20,8);not null"`
	BaseAmount            decimal.Decimal   `gorm:"column:base_amount;type:numeric(20,8);not null"`
	Multiplier            decimal.Decimal   `gorm:"column:multiplier;type:numeric(8,4);not null;default:1"`
	LockCategory          *LockCategory     `gorm:"column:lock_category;size:16"`
	LockID                *string           `gorm:"column:lock_id;size:36;index"`
	ExternalTransactionID *string           `gorm:"column:external_transaction_id;size:191;uniqueIndex"`
	Status                TransactionStatus `gorm:"column:status;size:16;index;not null"`
	Description           string            `gorm:"column:description;type:text"`
	Metadata              datatypes.JSON    `gorm:"column:metadata"`
	CreatedAt             time.Time         `gorm:"autoCreateTime"`
	CompletedAt           *time.Time        `gorm:"column:completed_at"`
}

func (Transaction) TableName() string {
	return "nctr_transactions"
}
