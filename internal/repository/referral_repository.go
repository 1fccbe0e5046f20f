package repository

import (
	"context"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReferralStats struct {
	Invited       int64
	Rewarded      int64
	TotalRewarded decimal.Decimal
}

type ReferralRepository interface {
	// Link records the referral and stamps referred_by on the referee's
	// profile in one transaction. It returns ErrAlreadyReferred when the
	// referee already carries a referrer.
	Link(ctx context.Context, ref *model.Referral) error
	MarkRewarded(ctx context.Context, id uint64, reward decimal.Decimal, at time.Time) error
	ListByReferrer(ctx context.Context, referrerID string, limit int) ([]model.Referral, error)
	Stats(ctx context.Context, referrerID string) (*ReferralStats, error)
	SetDB(db *gorm.DB)
}

type referralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) Link(ctx context.Context, ref *model.Referral) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Profile{}).
			Where("user_id = ? AND referred_by IS NULL", ref.ReferredID).
			Update("referred_by", ref.ReferrerID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReferred
		}
		return tx.Create(ref).Error
	})
}

func (r *referralRepository) MarkRewarded(ctx context.Context, id uint64, reward decimal.Decimal, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Referral{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rewarded":    true,
			"reward_nctr": reward,
			"rewarded_at": at,
		}).Error
}

func (r *referralRepository) ListByReferrer(ctx context.Context, referrerID string, limit int) ([]model.Referral, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var list []model.Referral
	if err := r.db.WithContext(ctx).
		Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *referralRepository) Stats(ctx context.Context, referrerID string) (*ReferralStats, error) {
	var row struct {
		Invited  int64
		Rewarded int64
		Total    decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).Model(&model.Referral{}).
		Select("COUNT(*) AS invited, COALESCE(SUM(CASE WHEN rewarded THEN 1 ELSE 0 END), 0) AS rewarded, SUM(reward_nctr) AS total").
		Where("referrer_id = ?", referrerID).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	st := &ReferralStats{Invited: row.Invited, Rewarded: row.Rewarded, TotalRewarded: decimal.Zero}
	if row.Total.Valid {
		st.TotalRewarded = row.Total.Decimal
	}
	return st, nil
}

func (r *referralRepository) SetDB(db *gorm.DB) {
	r.db = db
}
