package handler

import (
	"context"
	"sync"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeLedger credits each external id once and reports later deliveries as
// duplicates, the way the ledger service does.
type fakeLedger struct {
	mu        sync.Mutex
	requests  []service.AwardRequest
	seen      map[string]bool
	portfolio map[string]decimal.Decimal
	err       error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{seen: map[string]bool{}, portfolio: map[string]decimal.Decimal{}}
}

func (f *fakeLedger) Award(_ context.Context, req service.AwardRequest) (*service.AwardResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if !req.Amount.IsPositive() {
		return nil, service.ErrInvalidAmount
	}
	tx := &model.Transaction{
		ID:         "tx-" + req.ExternalID,
		UserID:     req.UserID,
		Source:     req.Source,
		NCTRAmount: req.Amount,
		Status:     model.TxStatusCompleted,
	}
	if req.ExternalID != "" && f.seen[req.ExternalID] {
		return &service.AwardResult{Transaction: tx, Outcome: service.OutcomeDuplicate}, service.ErrDuplicate
	}
	f.seen[req.ExternalID] = true
	f.portfolio[req.UserID] = f.portfolio[req.UserID].Add(req.Amount)
	p := &model.Portfolio{UserID: req.UserID, AvailableNCTR: f.portfolio[req.UserID]}
	return &service.AwardResult{Transaction: tx, Portfolio: p, Outcome: service.OutcomeCredited}, nil
}

func (f *fakeLedger) GetPortfolio(_ context.Context, userID string) (*model.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &model.Portfolio{UserID: userID, AvailableNCTR: f.portfolio[userID], OpportunityStatus: "starter"}, nil
}

func (f *fakeLedger) ListTransactions(context.Context, string, repository.TransactionFilter) ([]model.Transaction, int64, error) {
	return nil, 0, nil
}

func (f *fakeLedger) credited(userID string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.portfolio[userID]
}

type fakeSettings struct {
	values map[string]decimal.Decimal
}

func (f *fakeSettings) Get(_ context.Context, key string) (string, error) {
	return f.values[key].String(), nil
}

func (f *fakeSettings) Decimal(_ context.Context, key string) (decimal.Decimal, error) {
	return f.values[key], nil
}

func (f *fakeSettings) List(context.Context) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range f.values {
		out[k] = v.String()
	}
	return out, nil
}

func (f *fakeSettings) Set(context.Context, string, string, string) error { return nil }

func (f *fakeSettings) NCTRPrice(context.Context) (decimal.Decimal, error) {
	return decimal.RequireFromString("0.05"), nil
}

type fakeProfiles struct {
	byEmail map[string]string
}

func (f *fakeProfiles) FindByEmail(_ context.Context, email string) (*model.Profile, error) {
	uid, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Profile{UserID: uid, Email: email}, nil
}

type fakeLocks struct {
	service.LockService
	err error
}

func (f *fakeLocks) Commit(_ context.Context, userID string, amount decimal.Decimal, category model.LockCategory) (*model.Lock, *model.Portfolio, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	if !category.Valid() {
		return nil, nil, service.ErrInvalidRequest
	}
	l := &model.Lock{ID: "lock-1", UserID: userID, Amount: amount, LockCategory: category, CommitmentDays: category.Days(), Status: model.LockStatusActive}
	return l, &model.Portfolio{UserID: userID}, nil
}

type fakeNotifications struct {
	filter  repository.NotificationFilter
	readIDs []uint64
	list    []model.Notification
}

func (f *fakeNotifications) Notify(ctx context.Context, userID, typ, title, body string, lockID, txID *string) {
}

func (f *fakeNotifications) List(ctx context.Context, userID string, filter repository.NotificationFilter) ([]model.Notification, int64, error) {
	f.filter = filter
	return f.list, int64(len(f.list)), nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, userID string, ids []uint64) (int64, error) {
	f.readIDs = ids
	if len(ids) == 0 {
		return int64(len(f.list)), nil
	}
	return int64(len(ids)), nil
}
