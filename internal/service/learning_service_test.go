package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nctr-alliance/garden-backend/internal/ai"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDrafter struct {
	questions []ai.QuizQuestion
	err       error
}

func (d stubDrafter) Draft(context.Context, string, string, int) ([]ai.QuizQuestion, error) {
	return d.questions, d.err
}

func learningFixture() *memLearning {
	return newMemLearning(
		model.LearningModule{ID: 1, Slug: "what-is-nctr", Title: "What is NCTR", Body: "NCTR is the reward token.", RewardNCTR: decimal.NewFromInt(25), LockCategory: model.Lock360, Active: true},
		model.LearningModule{ID: 2, Slug: "retired", Title: "Retired", RewardNCTR: decimal.NewFromInt(5), LockCategory: model.Lock360, Active: false},
	)
}

func TestCompleteModuleOnce(t *testing.T) {
	h := newHarness(t, nil)
	repo := learningFixture()
	svc := NewLearningService(repo, h.ledger, nil)
	ctx := context.Background()

	res, err := svc.Complete(ctx, "u1", 1)
	require.NoError(t, err)
	require.NotNil(t, res)
	requireDec(t, "25", h.portfolio(t, "u1").Lock360NCTR)
	require.Len(t, repo.completions, 1)
	require.NotNil(t, repo.completions[0].TransactionID)

	_, err = svc.Complete(ctx, "u1", 1)
	require.ErrorIs(t, err, ErrAlreadyCompleted)
	requireDec(t, "25", h.portfolio(t, "u1").Lock360NCTR)

	_, err = svc.Complete(ctx, "u1", 2)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Complete(ctx, "u1", 99)
	require.ErrorIs(t, err, ErrNotFound)

	views, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Completed)
}

func TestSaveModuleValidates(t *testing.T) {
	svc := NewLearningService(learningFixture(), nil, nil)
	ctx := context.Background()

	require.ErrorIs(t, svc.Save(ctx, &model.LearningModule{Title: "No slug"}), ErrInvalidRequest)
	require.ErrorIs(t, svc.Save(ctx, &model.LearningModule{Slug: "x", Title: "X", RewardNCTR: decimal.NewFromInt(-1)}), ErrInvalidAmount)

	m := &model.LearningModule{Slug: " Wallets ", Title: "Wallets", RewardNCTR: decimal.NewFromInt(10), Active: true}
	require.NoError(t, svc.Save(ctx, m))
	assert.Equal(t, "wallets", m.Slug)
	assert.Equal(t, model.Lock360, m.LockCategory)
}

func TestDraftQuiz(t *testing.T) {
	repo := learningFixture()
	qs := []ai.QuizQuestion{{Question: "What is NCTR?", Options: []string{"A token", "A tree"}, Answer: 0}}
	svc := NewLearningService(repo, nil, stubDrafter{questions: qs})

	got, err := svc.DraftQuiz(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, qs, got)

	var stored []ai.QuizQuestion
	require.NoError(t, json.Unmarshal(repo.modules[1].Quiz, &stored))
	assert.Equal(t, qs, stored)
}

func TestDraftQuizUnavailable(t *testing.T) {
	svc := NewLearningService(learningFixture(), nil, nil)
	_, err := svc.DraftQuiz(context.Background(), 1, 3)
	require.ErrorIs(t, err, ErrUnavailable)

	svc = NewLearningService(learningFixture(), nil, stubDrafter{err: ai.ErrDisabled})
	_, err = svc.DraftQuiz(context.Background(), 1, 3)
	require.ErrorIs(t, err, ErrUnavailable)
}
