package repository

import (
	"context"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Create(ctx context.Context, p *model.Profile) error
	FindByCode(ctx context.Context, code string) (*model.Profile, error)
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	UpdateContact(ctx context.Context, userID, email, displayName string) error
	SetDB(db *gorm.DB)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Create returns gorm.ErrDuplicatedKey when the user or the referral code already exists.
func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *profileRepository) FindByCode(ctx context.Context, code string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) UpdateContact(ctx context.Context, userID, email, displayName string) error {
	updates := map[string]interface{}{}
	if email != "" {
		updates["email"] = email
	}
	if displayName != "" {
		updates["display_name"] = displayName
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Profile{}).Where("user_id = ?", userID).Updates(updates).Error
}

func (r *profileRepository) SetDB(db *gorm.DB) {
	r.db = db
}
