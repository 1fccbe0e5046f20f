package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio stores the per-user NCTR aggregate. Only ledger operations mutate it.
type Portfolio struct {
	UserID            string          `gorm:"column:user_id;primaryKey;size:128"`
	AvailableNCTR     decimal.Decimal `gorm:"column:available_nctr;type:numeric(20,8);not null;default:0"`
	Lock90NCTR        decimal.Decimal `gorm:"column:lock_90_nctr;type:numeric(20,8);not null;default:0"`
	Lock360NCTR       decimal.Decimal `gorm:"column:lock_360_nctr;type:numeric(20,8);not null;default:0"`
	PendingNCTR       decimal.Decimal `gorm:"column:pending_nctr;type:numeric(20,8);not null;default:0"`
	TotalEarnedNCTR   decimal.Decimal `gorm:"column:total_earned_nctr;type:numeric(20,8);not null;default:0"`
	OpportunityStatus string          `gorm:"column:opportunity_status;size:32;not null;default:'starter'"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime"`
	CreatedAt         time.Time       `gorm:"autoCreateTime"`
}

func (Portfolio) TableName() string {
	return "nctr_portfolios"
}

// TotalLocked is the sum of both lock buckets.
func (p Portfolio) TotalLocked() decimal.Decimal {
	return p.Lock90NCTR.Add(p.Lock360NCTR)
}
