package model

import "time"

type SiteSetting struct {
	Key         string    `gorm:"column:key;primaryKey;size:64" yaml:"key"`
	Value       string    `gorm:"column:value;type:text;not null" yaml:"value"`
	Description string    `gorm:"column:description;type:text" yaml:"description"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" yaml:"-"`
}

func (SiteSetting) TableName() string {
	return "site_settings"
}
