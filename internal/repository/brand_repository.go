package repository

import (
	"context"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BrandRepository interface {
	Upsert(ctx context.Context, b *model.Brand) error
	FindByExternal(ctx context.Context, source model.BrandSource, externalID string) (*model.Brand, error)
	List(ctx context.Context, source model.BrandSource, activeOnly bool, limit, offset int) ([]model.Brand, int64, error)
	SetDB(db *gorm.DB)
}

type brandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepository{db: db}
}

// Upsert keys on (source, external_id). A locally configured nctr_per_dollar
// is kept when the incoming row carries zero.
func (r *brandRepository) Upsert(ctx context.Context, b *model.Brand) error {
	cols := []string{"name", "logo_url", "website_url", "commission_rate", "active", "raw", "synced_at", "updated_at"}
	if b.NCTRPerDollar.IsPositive() {
		cols = append(cols, "nctr_per_dollar")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(b).Error
}

func (r *brandRepository) FindByExternal(ctx context.Context, source model.BrandSource, externalID string) (*model.Brand, error) {
	var b model.Brand
	if err := r.db.WithContext(ctx).
		Where("source = ? AND external_id = ?", source, externalID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *brandRepository) List(ctx context.Context, source model.BrandSource, activeOnly bool, limit, offset int) ([]model.Brand, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	filter := func(q *gorm.DB) *gorm.DB {
		if source != "" {
			q = q.Where("source = ?", source)
		}
		if activeOnly {
			q = q.Where("active = ?", true)
		}
		return q
	}
	var (
		list  []model.Brand
		total int64
	)
	if err := r.db.WithContext(ctx).Model(&model.Brand{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.WithContext(ctx).Scopes(filter).Order("name ASC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *brandRepository) SetDB(db *gorm.DB) {
	r.db = db
}
