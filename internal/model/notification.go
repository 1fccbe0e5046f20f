package model

import "time"

const (
	NotificationTierUpgrade  = "tier_upgrade"
	NotificationLockReleased = "lock_released"
	NotificationCredit       = "nctr_credited"
	NotificationLockUpgraded = "lock_upgraded"
)

type Notification struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement"`
	UserID        string     `gorm:"column:user_id;size:128;index;not null"`
	Type          string     `gorm:"column:type;size:64;not null"`
	Title         string     `gorm:"column:title;size:255"`
	Body          string     `gorm:"column:body;type:text"`
	LockID        *string    `gorm:"column:lock_id;size:36;index"`
	TransactionID *string    `gorm:"column:transaction_id;size:36;index"`
	ReadAt        *time.Time `gorm:"column:read_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
