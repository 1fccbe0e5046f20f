package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DailyCheckin struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	UserID      string          `gorm:"column:user_id;size:128;not null;uniqueIndex:idx_checkin_user_date"`
	CheckinDate string          `gorm:"column:checkin_date;size:10;not null;uniqueIndex:idx_checkin_user_date"` // UTC YYYY-MM-DD
	Streak      int             `gorm:"column:streak;not null"`
	RewardNCTR  decimal.Decimal `gorm:"column:reward_nctr;type:numeric(20,8);not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

func (DailyCheckin) TableName() string {
	return "daily_checkins"
}
