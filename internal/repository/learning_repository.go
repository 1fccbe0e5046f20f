package repository

import (
	"context"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LearningRepository interface {
	List(ctx context.Context, activeOnly bool) ([]model.LearningModule, error)
	Get(ctx context.Context, id uint64) (*model.LearningModule, error)
	Save(ctx context.Context, m *model.LearningModule) error
	UpsertBySlug(ctx context.Context, m *model.LearningModule) error
	SetQuiz(ctx context.Context, id uint64, quiz datatypes.JSON) error
	// CreateCompletion returns gorm.ErrDuplicatedKey when the user already completed the module.
	CreateCompletion(ctx context.Context, c *model.LearningCompletion) error
	DeleteCompletion(ctx context.Context, id uint64) error
	SetCompletionTx(ctx context.Context, id uint64, txID string) error
	CompletedModuleIDs(ctx context.Context, userID string) ([]uint64, error)
	SetDB(db *gorm.DB)
}

type learningRepository struct {
	db *gorm.DB
}

func NewLearningRepository(db *gorm.DB) LearningRepository {
	return &learningRepository{db: db}
}

func (r *learningRepository) List(ctx context.Context, activeOnly bool) ([]model.LearningModule, error) {
	q := r.db.WithContext(ctx).Model(&model.LearningModule{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var list []model.LearningModule
	if err := q.Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *learningRepository) Get(ctx context.Context, id uint64) (*model.LearningModule, error) {
	var m model.LearningModule
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *learningRepository) Save(ctx context.Context, m *model.LearningModule) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *learningRepository) UpsertBySlug(ctx context.Context, m *model.LearningModule) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "body", "reward_nctr", "lock_category", "active", "updated_at"}),
	}).Create(m).Error
}

func (r *learningRepository) SetQuiz(ctx context.Context, id uint64, quiz datatypes.JSON) error {
	res := r.db.WithContext(ctx).Model(&model.LearningModule{}).Where("id = ?", id).Update("quiz", quiz)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *learningRepository) CreateCompletion(ctx context.Context, c *model.LearningCompletion) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *learningRepository) DeleteCompletion(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&model.LearningCompletion{}, id).Error
}

func (r *learningRepository) SetCompletionTx(ctx context.Context, id uint64, txID string) error {
	return r.db.WithContext(ctx).Model(&model.LearningCompletion{}).Where("id = ?", id).Update("transaction_id", txID).Error
}

func (r *learningRepository) CompletedModuleIDs(ctx context.Context, userID string) ([]uint64, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).Model(&model.LearningCompletion{}).
		Where("user_id = ?", userID).
		Pluck("module_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *learningRepository) SetDB(db *gorm.DB) {
	r.db = db
}
