package repository

import (
	"context"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatusLevelRepository interface {
	List(ctx context.Context) ([]model.StatusLevel, error)
	Get(ctx context.Context, name string) (*model.StatusLevel, error)
	Upsert(ctx context.Context, l *model.StatusLevel) error
	SetDB(db *gorm.DB)
}

type statusLevelRepository struct {
	db *gorm.DB
}

func NewStatusLevelRepository(db *gorm.DB) StatusLevelRepository {
	return &statusLevelRepository{db: db}
}

func (r *statusLevelRepository) List(ctx context.Context) ([]model.StatusLevel, error) {
	var list []model.StatusLevel
	if err := r.db.WithContext(ctx).Order("sort_order ASC, min_locked_nctr ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *statusLevelRepository) Get(ctx context.Context, name string) (*model.StatusLevel, error) {
	var l model.StatusLevel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *statusLevelRepository) Upsert(ctx context.Context, l *model.StatusLevel) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"min_locked_nctr", "reward_multiplier", "description", "sort_order", "updated_at"}),
	}).Create(l).Error
}

func (r *statusLevelRepository) SetDB(db *gorm.DB) {
	r.db = db
}
