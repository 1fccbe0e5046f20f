package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusLevel is the settings row carrying the reward multiplier of a tier.
type StatusLevel struct {
	Name             string          `gorm:"column:name;primaryKey;size:32" yaml:"name"`
	MinLockedNCTR    decimal.Decimal `gorm:"column:min_locked_nctr;type:numeric(20,8);not null" yaml:"min_locked_nctr"`
	RewardMultiplier decimal.Decimal `gorm:"column:reward_multiplier;type:numeric(8,4);not null;default:1" yaml:"reward_multiplier"`
	Description      string          `gorm:"column:description;type:text" yaml:"description"`
	SortOrder        int             `gorm:"column:sort_order;not null;default:0" yaml:"sort_order"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" yaml:"-"`
}

func (StatusLevel) TableName() string {
	return "opportunity_status_levels"
}
