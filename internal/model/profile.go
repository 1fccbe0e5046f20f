package model

import "time"

type Profile struct {
	UserID       string    `gorm:"column:user_id;primaryKey;size:128"`
	Email        string    `gorm:"column:email;size:255;index"`
	DisplayName  string    `gorm:"column:display_name;size:255"`
	ReferralCode string    `gorm:"column:referral_code;size:16;uniqueIndex;not null"`
	ReferredBy   *string   `gorm:"column:referred_by;size:128;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}
