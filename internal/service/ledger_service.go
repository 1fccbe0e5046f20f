package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nctr-alliance/garden-backend/internal/event"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/metrics"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/nctr-alliance/garden-backend/internal/tier"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const externalGuardTTL = 30 * time.Second

type AwardOutcome string

const (
	OutcomeCredited  AwardOutcome = "credited"
	OutcomePending   AwardOutcome = "pending"
	OutcomePromoted  AwardOutcome = "promoted"
	OutcomeFailed    AwardOutcome = "failed"
	OutcomeDuplicate AwardOutcome = "duplicate"
)

// AwardRequest credits NCTR to a user. Amount is the base amount before any
// tier multiplier. Status defaults to completed; failed only resolves an
// existing pending row with the same ExternalID.
type AwardRequest struct {
	UserID       string
	Source       model.Source
	Amount       decimal.Decimal
	ExternalID   string
	Status       model.TransactionStatus
	LockCategory *model.LockCategory
	ToAvailable  bool
	Description  string
	Metadata     map[string]interface{}
}

type AwardResult struct {
	Transaction *model.Transaction
	Portfolio   *model.Portfolio
	Lock        *model.Lock
	Outcome     AwardOutcome
}

type LedgerService interface {
	Award(ctx context.Context, req AwardRequest) (*AwardResult, error)
	GetPortfolio(ctx context.Context, userID string) (*model.Portfolio, error)
	ListTransactions(ctx context.Context, userID string, f repository.TransactionFilter) ([]model.Transaction, int64, error)
}

// Sources whose awards scale with the holder's tier multiplier.
var multiplierSources = map[model.Source]bool{
	model.SourceAffiliatePurchase: true,
	model.SourceNCTRLive:          true,
}

// Where each source lands when the request names no lock category.
// manual_credit is absent and goes to available.
var defaultLocks = map[model.Source]model.LockCategory{
	model.SourceAffiliatePurchase: model.Lock360,
	model.SourceReferral:          model.Lock360,
	model.SourceDailyCheckin:      model.Lock360,
	model.SourceLearning:          model.Lock360,
	model.SourceTokenPurchase:     model.Lock360,
	model.SourceNCTRLive:          model.Lock360,
	model.SourceSignupBonus:       model.Lock360,
	model.SourceFreeTrial:         model.Lock90,
}

type ledgerService struct {
	portfolios repository.PortfolioRepository
	txs        repository.TransactionRepository
	ledger     repository.LedgerRepository
	status     StatusService
	notifier   NotificationService
	events     event.Publisher
	guard      Guard
	log        zerolog.Logger
}

func NewLedgerService(
	portfolios repository.PortfolioRepository,
	txs repository.TransactionRepository,
	ledger repository.LedgerRepository,
	status StatusService,
	notifier NotificationService,
	events event.Publisher,
	guard Guard,
) LedgerService {
	if events == nil {
		events = event.NopPublisher{}
	}
	if guard == nil {
		guard = nopGuard{}
	}
	return &ledgerService{
		portfolios: portfolios,
		txs:        txs,
		ledger:     ledger,
		status:     status,
		notifier:   notifier,
		events:     events,
		guard:      guard,
		log:        logging.Component("ledger"),
	}
}

func (s *ledgerService) GetPortfolio(ctx context.Context, userID string) (*model.Portfolio, error) {
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	return s.portfolios.Get(ctx, userID)
}

func (s *ledgerService) ListTransactions(ctx context.Context, userID string, f repository.TransactionFilter) ([]model.Transaction, int64, error) {
	if userID == "" {
		return nil, 0, ErrInvalidRequest
	}
	return s.txs.ListByUser(ctx, userID, f)
}

func (s *ledgerService) Award(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.ExternalID = strings.TrimSpace(req.ExternalID)
	if req.Status == "" {
		req.Status = model.TxStatusCompleted
	}
	if err := validateAward(req); err != nil {
		return nil, err
	}

	if req.ExternalID != "" {
		key := "ledger:ext:" + req.ExternalID
		acquired, err := s.guard.Acquire(ctx, key, externalGuardTTL)
		switch {
		case err != nil:
			logging.FromContext(ctx, s.log).Warn().Err(err).Str("external_id", req.ExternalID).Msg("guard unavailable")
		case !acquired:
			metrics.RecordCredit(string(req.Source), "in_flight", 0)
			return nil, ErrInFlight
		default:
			defer s.guard.Release(ctx, key)
		}

		res, handled, err := s.resolveExisting(ctx, req)
		if handled {
			return res, err
		}
		if err != nil {
			return nil, err
		}
	}

	if req.Status == model.TxStatusFailed {
		// nothing pending under this id
		return nil, ErrNotFound
	}
	return s.credit(ctx, req)
}

func validateAward(req AwardRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidRequest)
	}
	if !req.Source.Earnable() {
		return fmt.Errorf("%w: source %q cannot earn", ErrInvalidRequest, req.Source)
	}
	switch req.Status {
	case model.TxStatusPending, model.TxStatusCompleted:
		if !req.Amount.IsPositive() {
			return ErrInvalidAmount
		}
	case model.TxStatusFailed:
		if req.ExternalID == "" {
			return fmt.Errorf("%w: failed status needs an external id", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidRequest, req.Status)
	}
	if req.LockCategory != nil && !req.LockCategory.Valid() {
		return fmt.Errorf("%w: lock category %q", ErrInvalidRequest, *req.LockCategory)
	}
	return nil
}

// resolveExisting handles a request whose external id is already recorded.
func (s *ledgerService) resolveExisting(ctx context.Context, req AwardRequest) (*AwardResult, bool, error) {
	existing, err := s.txs.FindByExternalID(ctx, req.ExternalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup external id: %w", err)
	}

	if existing.Status == model.TxStatusPending {
		switch req.Status {
		case model.TxStatusCompleted:
			res, err := s.promote(ctx, existing.ID)
			return res, true, err
		case model.TxStatusFailed:
			res, err := s.fail(ctx, existing.ID)
			return res, true, err
		}
	}
	metrics.RecordCredit(string(req.Source), string(OutcomeDuplicate), 0)
	return &AwardResult{Transaction: existing, Outcome: OutcomeDuplicate}, true, ErrDuplicate
}

func (s *ledgerService) promote(ctx context.Context, txID string) (*AwardResult, error) {
	t, p, lock, err := s.ledger.CompletePending(ctx, txID)
	if err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("complete pending: %w", err)
	}
	res := &AwardResult{Transaction: t, Portfolio: p, Lock: lock, Outcome: OutcomePromoted}
	s.afterCredit(ctx, res)
	return res, nil
}

func (s *ledgerService) fail(ctx context.Context, txID string) (*AwardResult, error) {
	t, err := s.ledger.FailPending(ctx, txID)
	if err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("fail pending: %w", err)
	}
	metrics.RecordCredit(string(t.Source), string(OutcomeFailed), 0)
	if err := s.events.Publish(ctx, event.New(event.TypeFailed, t.UserID, map[string]interface{}{
		"transaction_id": t.ID,
		"amount":         t.NCTRAmount.String(),
		"source":         string(t.Source),
	})); err != nil {
		logging.FromContext(ctx, s.log).Warn().Err(err).Msg("publish failed event")
	}
	return &AwardResult{Transaction: t, Outcome: OutcomeFailed}, nil
}

func (s *ledgerService) credit(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	mult := decimal.NewFromInt(1)
	if multiplierSources[req.Source] {
		p, err := s.portfolios.Get(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		mult, err = s.status.Multiplier(ctx, tier.ForAmount(p.Lock360NCTR))
		if err != nil {
			return nil, err
		}
	}

	t := &model.Transaction{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		TransactionType: model.TxTypeEarned,
		Source:          req.Source,
		NCTRAmount:      req.Amount.Mul(mult).Round(8),
		BaseAmount:      req.Amount,
		Multiplier:      mult,
		LockCategory:    lockCategoryFor(req),
		Status:          req.Status,
		Description:     req.Description,
	}
	if req.ExternalID != "" {
		ext := req.ExternalID
		t.ExternalTransactionID = &ext
	}
	if len(req.Metadata) > 0 {
		b, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata: %v", ErrInvalidRequest, err)
		}
		t.Metadata = datatypes.JSON(b)
	}

	p, lock, err := s.ledger.ApplyCredit(ctx, t)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && req.ExternalID != "" {
			if existing, ferr := s.txs.FindByExternalID(ctx, req.ExternalID); ferr == nil {
				metrics.RecordCredit(string(req.Source), string(OutcomeDuplicate), 0)
				return &AwardResult{Transaction: existing, Outcome: OutcomeDuplicate}, ErrDuplicate
			}
		}
		return nil, fmt.Errorf("apply credit: %w", err)
	}
	outcome := OutcomeCredited
	if t.Status == model.TxStatusPending {
		outcome = OutcomePending
	}
	res := &AwardResult{Transaction: t, Portfolio: p, Lock: lock, Outcome: outcome}
	s.afterCredit(ctx, res)
	return res, nil
}

func lockCategoryFor(req AwardRequest) *model.LockCategory {
	if req.ToAvailable {
		return nil
	}
	if req.LockCategory != nil {
		c := *req.LockCategory
		return &c
	}
	c, ok := defaultLocks[req.Source]
	if !ok {
		return nil
	}
	return &c
}

// afterCredit runs the best-effort side effects of a committed award.
func (s *ledgerService) afterCredit(ctx context.Context, res *AwardResult) {
	t := res.Transaction
	l := logging.FromContext(ctx, s.log)

	if t.Status != model.TxStatusCompleted {
		metrics.RecordCredit(string(t.Source), string(res.Outcome), 0)
		if err := s.events.Publish(ctx, event.New(event.TypePending, t.UserID, creditEventData(t))); err != nil {
			l.Warn().Err(err).Msg("publish pending event")
		}
		return
	}

	metrics.RecordCredit(string(t.Source), string(res.Outcome), t.NCTRAmount.InexactFloat64())
	l.Info().
		Str("user_id", t.UserID).
		Str("source", string(t.Source)).
		Str("amount", t.NCTRAmount.String()).
		Str("outcome", string(res.Outcome)).
		Msg("nctr credited")

	if t.LockCategory != nil && *t.LockCategory == model.Lock360 {
		if _, _, err := s.status.Refresh(ctx, t.UserID); err != nil {
			l.Warn().Err(err).Msg("status refresh")
		}
	}
	where := "available"
	if t.LockCategory != nil {
		where = string(*t.LockCategory)
	}
	s.notifier.Notify(ctx, t.UserID, model.NotificationCredit,
		"You earned "+t.NCTRAmount.StringFixed(2)+" NCTR",
		"Credited from "+sourceLabel(t.Source)+" into "+where+".",
		t.LockID, &t.ID)
	if err := s.events.Publish(ctx, event.New(event.TypeCredited, t.UserID, creditEventData(t))); err != nil {
		l.Warn().Err(err).Msg("publish credit event")
	}
}

func creditEventData(t *model.Transaction) map[string]interface{} {
	data := map[string]interface{}{
		"transaction_id": t.ID,
		"source":         string(t.Source),
		"amount":         t.NCTRAmount.String(),
		"base_amount":    t.BaseAmount.String(),
		"multiplier":     t.Multiplier.String(),
		"status":         string(t.Status),
	}
	if t.LockCategory != nil {
		data["lock_category"] = string(*t.LockCategory)
	}
	if t.ExternalTransactionID != nil {
		data["external_transaction_id"] = *t.ExternalTransactionID
	}
	return data
}

func sourceLabel(src model.Source) string {
	return strings.ReplaceAll(string(src), "_", " ")
}
