package repository

import (
	"context"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"gorm.io/gorm"
)

type LockRepository interface {
	FindByID(ctx context.Context, id string) (*model.Lock, error)
	ListByUser(ctx context.Context, userID string, status model.LockStatus) ([]model.Lock, error)
	ListMatured(ctx context.Context, now time.Time, after *MaturedCursor, limit int) ([]model.Lock, error)
	SetDB(db *gorm.DB)
}

type lockRepository struct {
	db *gorm.DB
}

func NewLockRepository(db *gorm.DB) LockRepository {
	return &lockRepository{db: db}
}

func (r *lockRepository) FindByID(ctx context.Context, id string) (*model.Lock, error) {
	var l model.Lock
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lockRepository) ListByUser(ctx context.Context, userID string, status model.LockStatus) ([]model.Lock, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []model.Lock
	if err := q.Order("unlock_date ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MaturedCursor marks the last lock a release pass has visited.
type MaturedCursor struct {
	UnlockDate time.Time
	ID         string
}

// CursorAfter returns the position just past l.
func CursorAfter(l model.Lock) *MaturedCursor {
	return &MaturedCursor{UnlockDate: l.UnlockDate, ID: l.ID}
}

// ListMatured returns active locks whose unlock date is at or before now,
// ordered by (unlock_date, id) and starting after the cursor when one is given.
func (r *lockRepository) ListMatured(ctx context.Context, now time.Time, after *MaturedCursor, limit int) ([]model.Lock, error) {
	if limit <= 0 {
		limit = 500
	}
	q := r.db.WithContext(ctx).
		Where("status = ? AND unlock_date <= ?", model.LockStatusActive, now)
	if after != nil {
		q = q.Where("(unlock_date > ? OR (unlock_date = ? AND id > ?))", after.UnlockDate, after.UnlockDate, after.ID)
	}
	var list []model.Lock
	if err := q.Order("unlock_date ASC, id ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *lockRepository) SetDB(db *gorm.DB) {
	r.db = db
}
