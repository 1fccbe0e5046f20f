package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BrandSource string

const (
	BrandSourceLoyalize BrandSource = "loyalize"
	BrandSourceImpact   BrandSource = "impact"
)

type Brand struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement"`
	Source         BrandSource     `gorm:"column:source;size:16;not null;uniqueIndex:idx_brand_source_ext"`
	ExternalID     string          `gorm:"column:external_id;size:64;not null;uniqueIndex:idx_brand_source_ext"`
	Name           string          `gorm:"column:name;size:255;not null"`
	LogoURL        string          `gorm:"column:logo_url;type:text"`
	WebsiteURL     string          `gorm:"column:website_url;type:text"`
	NCTRPerDollar  decimal.Decimal `gorm:"column:nctr_per_dollar;type:numeric(12,4);not null;default:0"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(8,4);not null;default:0"`
	Active         bool            `gorm:"column:active;not null"`
	Raw            datatypes.JSON  `gorm:"column:raw"`
	SyncedAt       time.Time       `gorm:"column:synced_at"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (Brand) TableName() string {
	return "brands"
}
