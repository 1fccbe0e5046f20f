package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/nctr-alliance/garden-backend/internal/ai"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizDrafter produces quiz questions for a lesson.
type QuizDrafter interface {
	Draft(ctx context.Context, title, body string, n int) ([]ai.QuizQuestion, error)
}

type ModuleView struct {
	Module    model.LearningModule
	Completed bool
}

type LearningService interface {
	List(ctx context.Context, userID string) ([]ModuleView, error)
	Get(ctx context.Context, id uint64) (*model.LearningModule, error)
	Complete(ctx context.Context, userID string, moduleID uint64) (*AwardResult, error)
	Save(ctx context.Context, m *model.LearningModule) error
	DraftQuiz(ctx context.Context, moduleID uint64, n int) ([]ai.QuizQuestion, error)
}

type learningService struct {
	repo    repository.LearningRepository
	ledger  LedgerService
	drafter QuizDrafter
	log     zerolog.Logger
}

func NewLearningService(repo repository.LearningRepository, ledger LedgerService, drafter QuizDrafter) LearningService {
	return &learningService{repo: repo, ledger: ledger, drafter: drafter, log: logging.Component("learning")}
}

func (s *learningService) List(ctx context.Context, userID string) ([]ModuleView, error) {
	mods, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	done := map[uint64]bool{}
	if userID != "" {
		ids, err := s.repo.CompletedModuleIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			done[id] = true
		}
	}
	out := make([]ModuleView, 0, len(mods))
	for _, m := range mods {
		out = append(out, ModuleView{Module: m, Completed: done[m.ID]})
	}
	return out, nil
}

func (s *learningService) Get(ctx context.Context, id uint64) (*model.LearningModule, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// Complete records the completion and credits the module reward once per user.
func (s *learningService) Complete(ctx context.Context, userID string, moduleID uint64) (*AwardResult, error) {
	if userID == "" || moduleID == 0 {
		return nil, ErrInvalidRequest
	}
	m, err := s.Get(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if !m.Active {
		return nil, ErrNotFound
	}

	c := &model.LearningCompletion{UserID: userID, ModuleID: moduleID}
	if err := s.repo.CreateCompletion(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyCompleted
		}
		return nil, err
	}
	if !m.RewardNCTR.IsPositive() {
		return nil, nil
	}

	req := AwardRequest{
		UserID:      userID,
		Source:      model.SourceLearning,
		Amount:      m.RewardNCTR,
		ExternalID:  "learning:" + strconv.FormatUint(moduleID, 10) + ":" + userID,
		Description: "Completed " + m.Title,
		Metadata:    map[string]interface{}{"module": m.Slug},
	}
	if m.LockCategory.Valid() {
		cat := m.LockCategory
		req.LockCategory = &cat
	}
	res, err := s.ledger.Award(ctx, req)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return res, ErrAlreadyCompleted
		}
		if derr := s.repo.DeleteCompletion(ctx, c.ID); derr != nil {
			logging.FromContext(ctx, s.log).Error().Err(derr).Uint64("completion_id", c.ID).
				Msg("rollback completion after failed award")
		}
		return nil, err
	}
	if res != nil && res.Transaction != nil {
		_ = s.repo.SetCompletionTx(ctx, c.ID, res.Transaction.ID)
	}
	return res, nil
}

func (s *learningService) Save(ctx context.Context, m *model.LearningModule) error {
	if m == nil {
		return ErrInvalidRequest
	}
	m.Slug = strings.TrimSpace(strings.ToLower(m.Slug))
	m.Title = strings.TrimSpace(m.Title)
	if m.Slug == "" || m.Title == "" {
		return ErrInvalidRequest
	}
	if m.RewardNCTR.IsNegative() {
		return ErrInvalidAmount
	}
	if m.LockCategory == "" {
		m.LockCategory = model.Lock360
	}
	if !m.LockCategory.Valid() {
		return ErrInvalidRequest
	}
	if err := s.repo.Save(ctx, m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrInvalidRequest
		}
		return err
	}
	return nil
}

// DraftQuiz generates questions for the module and stores them on it.
func (s *learningService) DraftQuiz(ctx context.Context, moduleID uint64, n int) ([]ai.QuizQuestion, error) {
	if s.drafter == nil {
		return nil, ErrUnavailable
	}
	m, err := s.Get(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	qs, err := s.drafter.Draft(ctx, m.Title, m.Body, n)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			return nil, ErrUnavailable
		}
		return nil, err
	}
	b, err := json.Marshal(qs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetQuiz(ctx, moduleID, datatypes.JSON(b)); err != nil {
		return nil, err
	}
	return qs, nil
}
