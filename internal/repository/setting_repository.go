package repository

import (
	"context"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.SiteSetting, error)
	List(ctx context.Context) ([]model.SiteSetting, error)
	Upsert(ctx context.Context, s *model.SiteSetting) error
	SetDB(db *gorm.DB)
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*model.SiteSetting, error) {
	var s model.SiteSetting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingRepository) List(ctx context.Context) ([]model.SiteSetting, error) {
	var list []model.SiteSetting
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *settingRepository) Upsert(ctx context.Context, s *model.SiteSetting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(s).Error
}

func (r *settingRepository) SetDB(db *gorm.DB) {
	r.db = db
}
