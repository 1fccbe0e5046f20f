package repository

import (
	"context"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"gorm.io/gorm"
)

type CheckinRepository interface {
	Last(ctx context.Context, userID string) (*model.DailyCheckin, error)
	Create(ctx context.Context, c *model.DailyCheckin) error
	Delete(ctx context.Context, id uint64) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.DailyCheckin, error)
	SetDB(db *gorm.DB)
}

type checkinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) CheckinRepository {
	return &checkinRepository{db: db}
}

// Last returns the most recent check-in or gorm.ErrRecordNotFound.
func (r *checkinRepository) Last(ctx context.Context, userID string) (*model.DailyCheckin, error) {
	var c model.DailyCheckin
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checkin_date DESC").
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Create returns gorm.ErrDuplicatedKey when the user already checked in that day.
func (r *checkinRepository) Create(ctx context.Context, c *model.DailyCheckin) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *checkinRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&model.DailyCheckin{}, id).Error
}

func (r *checkinRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.DailyCheckin, error) {
	if limit <= 0 || limit > 60 {
		limit = 30
	}
	var list []model.DailyCheckin
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checkin_date DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *checkinRepository) SetDB(db *gorm.DB) {
	r.db = db
}
