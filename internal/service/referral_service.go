package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const referralCodeLen = 8

type ReferralSummary struct {
	Code          string
	Invited       int64
	Rewarded      int64
	TotalRewarded decimal.Decimal
	InviteReward  decimal.Decimal
	Referrals     []model.Referral
}

type ReferralService interface {
	// EnsureProfile returns the caller's profile, creating it with a fresh
	// referral code on first use.
	EnsureProfile(ctx context.Context, userID, email, displayName string) (*model.Profile, error)
	ApplyCode(ctx context.Context, referredID, code string) (*model.Referral, error)
	Stats(ctx context.Context, userID string) (*ReferralSummary, error)
}

type referralService struct {
	profiles  repository.ProfileRepository
	referrals repository.ReferralRepository
	settings  SettingsService
	ledger    LedgerService
	log       zerolog.Logger
	now       func() time.Time
}

func NewReferralService(profiles repository.ProfileRepository, referrals repository.ReferralRepository, settings SettingsService, ledger LedgerService) ReferralService {
	return &referralService{
		profiles:  profiles,
		referrals: referrals,
		settings:  settings,
		ledger:    ledger,
		log:       logging.Component("referral"),
		now:       utcNow,
	}
}

func NewReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:referralCodeLen])
}

func (s *referralService) EnsureProfile(ctx context.Context, userID, email, displayName string) (*model.Profile, error) {
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	p, err := s.profiles.Get(ctx, userID)
	if err == nil {
		if (email != "" && p.Email != email) || (displayName != "" && p.DisplayName != displayName) {
			if err := s.profiles.UpdateContact(ctx, userID, email, displayName); err != nil {
				return nil, err
			}
			if email != "" {
				p.Email = email
			}
			if displayName != "" {
				p.DisplayName = displayName
			}
		}
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for attempt := 0; attempt < 5; attempt++ {
		p = &model.Profile{
			UserID:       userID,
			Email:        email,
			DisplayName:  displayName,
			ReferralCode: NewReferralCode(),
		}
		err = s.profiles.Create(ctx, p)
		if err == nil {
			s.awardSignupBonus(ctx, userID)
			return p, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// another request created the profile, or the code collided
		if existing, gerr := s.profiles.Get(ctx, userID); gerr == nil {
			return existing, nil
		}
	}
	return nil, err
}

func (s *referralService) awardSignupBonus(ctx context.Context, userID string) {
	bonus, err := s.settings.Decimal(ctx, SettingSignupBonus)
	if err != nil || !bonus.IsPositive() {
		return
	}
	_, err = s.ledger.Award(ctx, AwardRequest{
		UserID:      userID,
		Source:      model.SourceSignupBonus,
		Amount:      bonus,
		ExternalID:  "signup:" + userID,
		Description: "Welcome bonus",
	})
	if err != nil && !errors.Is(err, ErrDuplicate) {
		logging.FromContext(ctx, s.log).Warn().Err(err).Msg("signup bonus")
	}
}

func (s *referralService) ApplyCode(ctx context.Context, referredID, code string) (*model.Referral, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if referredID == "" {
		return nil, ErrInvalidRequest
	}
	if code == "" {
		return nil, ErrInvalidCode
	}
	me, err := s.EnsureProfile(ctx, referredID, "", "")
	if err != nil {
		return nil, err
	}
	if me.ReferredBy != nil {
		return nil, ErrAlreadyReferred
	}
	if me.ReferralCode == code {
		return nil, ErrSelfReferral
	}
	referrer, err := s.profiles.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if referrer.UserID == referredID {
		return nil, ErrSelfReferral
	}

	ref := &model.Referral{ReferrerID: referrer.UserID, ReferredID: referredID, Code: code, RewardNCTR: decimal.Zero}
	if err := s.referrals.Link(ctx, ref); err != nil {
		if errors.Is(err, repository.ErrAlreadyReferred) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReferred
		}
		return nil, err
	}

	l := logging.FromContext(ctx, s.log)
	reward, err := s.settings.Decimal(ctx, SettingInviteReward)
	if err != nil {
		l.Warn().Err(err).Msg("invite reward setting")
	} else if reward.IsPositive() {
		_, err := s.ledger.Award(ctx, AwardRequest{
			UserID:      referrer.UserID,
			Source:      model.SourceReferral,
			Amount:      reward,
			ExternalID:  "referral:" + referredID,
			Description: "Friend joined with your invite code",
			Metadata:    map[string]interface{}{"referred_id": referredID},
		})
		if err == nil || errors.Is(err, ErrDuplicate) {
			at := s.now()
			if err := s.referrals.MarkRewarded(ctx, ref.ID, reward, at); err != nil {
				l.Warn().Err(err).Msg("mark referral rewarded")
			}
			ref.Rewarded = true
			ref.RewardNCTR = reward
			ref.RewardedAt = &at
		} else {
			l.Error().Err(err).Str("referrer_id", referrer.UserID).Msg("referral reward")
		}
	}

	if bonus, err := s.settings.Decimal(ctx, SettingRefereeBonus); err == nil && bonus.IsPositive() {
		if _, err := s.ledger.Award(ctx, AwardRequest{
			UserID:      referredID,
			Source:      model.SourceReferral,
			Amount:      bonus,
			ExternalID:  "referral-bonus:" + referredID,
			Description: "Joined with an invite code",
		}); err != nil && !errors.Is(err, ErrDuplicate) {
			l.Error().Err(err).Msg("referee bonus")
		}
	}
	return ref, nil
}

func (s *referralService) Stats(ctx context.Context, userID string) (*ReferralSummary, error) {
	p, err := s.EnsureProfile(ctx, userID, "", "")
	if err != nil {
		return nil, err
	}
	st, err := s.referrals.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := s.referrals.ListByReferrer(ctx, userID, 50)
	if err != nil {
		return nil, err
	}
	reward, err := s.settings.Decimal(ctx, SettingInviteReward)
	if err != nil {
		return nil, err
	}
	return &ReferralSummary{
		Code:          p.ReferralCode,
		Invited:       st.Invited,
		Rewarded:      st.Rewarded,
		TotalRewarded: st.TotalRewarded,
		InviteReward:  reward,
		Referrals:     list,
	}, nil
}
