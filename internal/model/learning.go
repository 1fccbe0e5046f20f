package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type LearningModule struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement" yaml:"-"`
	Slug         string          `gorm:"column:slug;size:128;uniqueIndex;not null" yaml:"slug"`
	Title        string          `gorm:"column:title;size:255;not null" yaml:"title"`
	Body         string          `gorm:"column:body;type:text" yaml:"body"`
	RewardNCTR   decimal.Decimal `gorm:"column:reward_nctr;type:numeric(20,8);not null;default:0" yaml:"reward_nctr"`
	LockCategory LockCategory    `gorm:"column:lock_category;size:16;not null;default:'360LOCK'" yaml:"lock_category"`
	Quiz         datatypes.JSON  `gorm:"column:quiz" yaml:"-"`
	Active       bool            `gorm:"column:active;not null" yaml:"active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" yaml:"-"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" yaml:"-"`
}

func (LearningModule) TableName() string {
	return "learning_modules"
}

type LearningCompletion struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	UserID        string    `gorm:"column:user_id;size:128;not null;uniqueIndex:idx_completion_user_module"`
	ModuleID      uint64    `gorm:"column:module_id;not null;uniqueIndex:idx_completion_user_module"`
	TransactionID *string   `gorm:"column:transaction_id;size:36"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (LearningCompletion) TableName() string {
	return "learning_completions"
}
