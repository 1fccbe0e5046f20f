package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewLock builds an active lock starting at now. 90LOCK commitments start
// upgrade-eligible.
func NewLock(userID string, amount decimal.Decimal, category LockCategory, now time.Time) *Lock {
	return &Lock{
		ID:             uuid.NewString(),
		UserID:         userID,
		Amount:         amount,
		LockCategory:   category,
		CommitmentDays: category.Days(),
		LockDate:       now,
		UnlockDate:     now.AddDate(0, 0, category.Days()),
		Status:         LockStatusActive,
		CanUpgrade:     category == Lock90,
	}
}

// NewMovementTx builds a completed transaction describing NCTR moving between
// portfolio buckets.
func NewMovementTx(userID string, typ TransactionType, source Source, amount decimal.Decimal, category LockCategory, lockID string, now time.Time) *Transaction {
	cat := category
	id := lockID
	return &Transaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		TransactionType: typ,
		Source:          source,
		NCTRAmount:      amount,
		BaseAmount:      amount,
		Multiplier:      decimal.NewFromInt(1),
		LockCategory:    &cat,
		LockID:          &id,
		Status:          TxStatusCompleted,
		CompletedAt:     &now,
	}
}
