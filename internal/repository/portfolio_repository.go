package repository

import (
	"context"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PortfolioRepository interface {
	Get(ctx context.Context, userID string) (*model.Portfolio, error)
	SetStatus(ctx context.Context, userID, status string) error
	SetDB(db *gorm.DB)
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

// Get returns the portfolio of userID, creating an empty one on first access.
func (r *portfolioRepository) Get(ctx context.Context, userID string) (*model.Portfolio, error) {
	return ensurePortfolio(r.db.WithContext(ctx), userID)
}

func (r *portfolioRepository) SetStatus(ctx context.Context, userID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Portfolio{}).
		Where("user_id = ?", userID).
		Update("opportunity_status", status).Error
}

func (r *portfolioRepository) SetDB(db *gorm.DB) {
	r.db = db
}

// ensurePortfolio inserts an empty portfolio unless one exists and reads it
// back. Concurrent first credits for the same user both succeed.
func ensurePortfolio(tx *gorm.DB, userID string) (*model.Portfolio, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Portfolio{UserID: userID, OpportunityStatus: "starter"}).Error; err != nil {
		return nil, err
	}
	return loadPortfolio(tx, userID)
}

func loadPortfolio(tx *gorm.DB, userID string) (*model.Portfolio, error) {
	var p model.Portfolio
	if err := tx.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
