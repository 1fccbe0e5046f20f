package repository

import (
	"context"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"gorm.io/gorm"
)

// NotificationFilter narrows a user's inbox. Zero fields match everything.
type NotificationFilter struct {
	UnreadOnly    bool
	Type          string
	LockID        string
	TransactionID string
	Limit         int
	Offset        int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, userID string, f NotificationFilter) ([]model.Notification, error)
	// MarkRead stamps read_at on the given ids, or on every unread row when ids is empty.
	MarkRead(ctx context.Context, userID string, ids []uint64) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	SetDB(db *gorm.DB)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) List(ctx context.Context, userID string, f NotificationFilter) ([]model.Notification, error) {
	if f.Limit <= 0 || f.Limit > 50 {
		f.Limit = 20
	}
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if f.UnreadOnly {
		q = q.Where("read_at IS NULL")
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.LockID != "" {
		q = q.Where("lock_id = ?", f.LockID)
	}
	if f.TransactionID != "" {
		q = q.Where("transaction_id = ?", f.TransactionID)
	}
	var list []model.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []uint64) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Update("read_at", r.db.NowFunc())
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *notificationRepository) SetDB(db *gorm.DB) {
	r.db = db
}
