package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Referral struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	ReferrerID string          `gorm:"column:referrer_id;size:128;index;not null"`
	ReferredID string          `gorm:"column:referred_id;size:128;uniqueIndex;not null"`
	Code       string          `gorm:"column:code;size:16;not null"`
	RewardNCTR decimal.Decimal `gorm:"column:reward_nctr;type:numeric(20,8);not null;default:0"`
	Rewarded   bool            `gorm:"column:rewarded;not null;default:false"`
	RewardedAt *time.Time      `gorm:"column:rewarded_at"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (Referral) TableName() string {
	return "referrals"
}
