package service

import (
	"context"
	"errors"

	"github.com/nctr-alliance/garden-backend/internal/event"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/mail"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/nctr-alliance/garden-backend/internal/tier"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatusInfo struct {
	Tier       tier.Tier
	Multiplier decimal.Decimal
	Locked360  decimal.Decimal
	NextTier   tier.Tier
	ToNext     decimal.Decimal
	HasNext    bool
}

type StatusService interface {
	Status(ctx context.Context, userID string) (*StatusInfo, error)
	Multiplier(ctx context.Context, t tier.Tier) (decimal.Decimal, error)
	// Refresh recomputes the stored tier and reports an upward change.
	Refresh(ctx context.Context, userID string) (*StatusInfo, bool, error)
	ListLevels(ctx context.Context) ([]model.StatusLevel, error)
	UpsertLevel(ctx context.Context, l *model.StatusLevel) error
}

type statusService struct {
	portfolios repository.PortfolioRepository
	levels     repository.StatusLevelRepository
	profiles   repository.ProfileRepository
	notifier   NotificationService
	mailer     mail.Mailer
	events     event.Publisher
	log        zerolog.Logger
}

func NewStatusService(
	portfolios repository.PortfolioRepository,
	levels repository.StatusLevelRepository,
	profiles repository.ProfileRepository,
	notifier NotificationService,
	mailer mail.Mailer,
	events event.Publisher,
) StatusService {
	if mailer == nil {
		mailer = mail.NopMailer{}
	}
	if events == nil {
		events = event.NopPublisher{}
	}
	return &statusService{
		portfolios: portfolios,
		levels:     levels,
		profiles:   profiles,
		notifier:   notifier,
		mailer:     mailer,
		events:     events,
		log:        logging.Component("status"),
	}
}

func (s *statusService) Status(ctx context.Context, userID string) (*StatusInfo, error) {
	p, err := s.portfolios.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.statusFor(ctx, p)
}

func (s *statusService) statusFor(ctx context.Context, p *model.Portfolio) (*StatusInfo, error) {
	t := tier.ForAmount(p.Lock360NCTR)
	mult, err := s.Multiplier(ctx, t)
	if err != nil {
		return nil, err
	}
	info := &StatusInfo{Tier: t, Multiplier: mult, Locked360: p.Lock360NCTR}
	info.NextTier, info.ToNext, info.HasNext = tier.Next(p.Lock360NCTR)
	return info, nil
}

// Multiplier reads the tier's reward multiplier; a missing row counts as 1.
func (s *statusService) Multiplier(ctx context.Context, t tier.Tier) (decimal.Decimal, error) {
	l, err := s.levels.Get(ctx, string(t))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, err
	}
	if !l.RewardMultiplier.IsPositive() {
		return decimal.NewFromInt(1), nil
	}
	return l.RewardMultiplier, nil
}

func (s *statusService) Refresh(ctx context.Context, userID string) (*StatusInfo, bool, error) {
	p, err := s.portfolios.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	info, err := s.statusFor(ctx, p)
	if err != nil {
		return nil, false, err
	}
	if string(info.Tier) == p.OpportunityStatus {
		return info, false, nil
	}
	if err := s.portfolios.SetStatus(ctx, userID, string(info.Tier)); err != nil {
		return nil, false, err
	}

	prev, ok := tier.Parse(p.OpportunityStatus)
	if ok && info.Tier.Rank() <= prev.Rank() {
		return info, false, nil
	}

	l := logging.FromContext(ctx, s.log)
	l.Info().Str("user_id", userID).Str("from", p.OpportunityStatus).Str("to", string(info.Tier)).Msg("status upgraded")
	s.notifier.Notify(ctx, userID, model.NotificationTierUpgrade,
		"Status upgraded to "+string(info.Tier),
		"Your 360LOCK balance of "+info.Locked360.StringFixed(2)+" NCTR earns a "+info.Multiplier.String()+"x multiplier.",
		nil, nil)
	if err := s.events.Publish(ctx, event.New(event.TypeStatusChanged, userID, map[string]interface{}{
		"from":       p.OpportunityStatus,
		"to":         string(info.Tier),
		"multiplier": info.Multiplier.String(),
	})); err != nil {
		l.Warn().Err(err).Msg("publish status event")
	}
	if prof, err := s.profiles.Get(ctx, userID); err == nil && prof.Email != "" {
		subject, body := mail.TierUpgradeEmail(prof.DisplayName, string(info.Tier), info.Multiplier.String())
		if err := s.mailer.Send(ctx, prof.Email, subject, body); err != nil {
			l.Warn().Err(err).Msg("tier upgrade email")
		}
	}
	return info, true, nil
}

func (s *statusService) ListLevels(ctx context.Context) ([]model.StatusLevel, error) {
	return s.levels.List(ctx)
}

func (s *statusService) UpsertLevel(ctx context.Context, l *model.StatusLevel) error {
	if l == nil {
		return ErrInvalidRequest
	}
	if _, ok := tier.Parse(l.Name); !ok {
		return ErrInvalidRequest
	}
	if l.MinLockedNCTR.IsNegative() || !l.RewardMultiplier.IsPositive() {
		return ErrInvalidRequest
	}
	return s.levels.Upsert(ctx, l)
}
