package service

import (
	"context"

	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
)

type NotificationService interface {
	Notify(ctx context.Context, userID, typ, title, body string, lockID, txID *string)
	List(ctx context.Context, userID string, f repository.NotificationFilter) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, userID string, ids []uint64) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is best-effort; failures are logged and never returned.
func (s *notificationService) Notify(ctx context.Context, userID, typ, title, body string, lockID, txID *string) {
	if userID == "" || typ == "" {
		return
	}
	n := &model.Notification{
		UserID:        userID,
		Type:          typ,
		Title:         title,
		Body:          body,
		LockID:        lockID,
		TransactionID: txID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		logging.FromContext(ctx, logging.Component("notification")).Warn().Err(err).Str("type", typ).Msg("notify failed")
	}
}

// List returns the filtered inbox together with the overall unread count.
func (s *notificationService) List(ctx context.Context, userID string, f repository.NotificationFilter) ([]model.Notification, int64, error) {
	if userID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.List(ctx, userID, f)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, ids []uint64) (int64, error) {
	if userID == "" {
		return 0, nil
	}
	return s.repo.MarkRead(ctx, userID, ids)
}
