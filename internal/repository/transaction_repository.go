package repository

import (
	"context"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"gorm.io/gorm"
)

type TransactionFilter struct {
	Source model.Source
	Status model.TransactionStatus
	Limit  int
	Offset int
}

type TransactionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	FindByExternalID(ctx context.Context, externalID string) (*model.Transaction, error)
	ListByUser(ctx context.Context, userID string, f TransactionFilter) ([]model.Transaction, int64, error)
	SetDB(db *gorm.DB)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	var t model.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Transaction, error) {
	var t model.Transaction
	if err := r.db.WithContext(ctx).Where("external_transaction_id = ?", externalID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string, f TransactionFilter) ([]model.Transaction, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	filter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", userID)
		if f.Source != "" {
			q = q.Where("source = ?", f.Source)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		return q
	}

	var (
		list  []model.Transaction
		total int64
	)
	if err := r.db.WithContext(ctx).Model(&model.Transaction{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.WithContext(ctx).
		Scopes(filter).
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *transactionRepository) SetDB(db *gorm.DB) {
	r.db = db
}
