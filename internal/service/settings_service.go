package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SettingNCTRPriceUSD         = "nctr_price_usd"
	SettingInviteReward         = "invite_reward_nctr"
	SettingRefereeBonus         = "invite_referee_bonus_nctr"
	SettingCheckinReward        = "daily_checkin_reward_nctr"
	SettingCheckinStreakBonus   = "daily_checkin_streak_bonus_nctr"
	SettingFreeTrialBonus       = "free_trial_bonus_nctr"
	SettingNCTRLivePerDollar    = "nctr_live_nctr_per_dollar"
	SettingDefaultNCTRPerDollar = "default_nctr_per_dollar"
	SettingSignupBonus          = "signup_bonus_nctr"
	priceCacheKey               = "setting:" + SettingNCTRPriceUSD
	priceCacheTTL               = 5 * time.Minute
)

// settingDefaults apply when a key has no row.
var settingDefaults = map[string]string{
	SettingNCTRPriceUSD:         "0.05",
	SettingInviteReward:         "1000",
	SettingRefereeBonus:         "0",
	SettingCheckinReward:        "10",
	SettingCheckinStreakBonus:   "50",
	SettingFreeTrialBonus:       "250",
	SettingNCTRLivePerDollar:    "10",
	SettingDefaultNCTRPerDollar: "5",
	SettingSignupBonus:          "0",
}

type SettingsService interface {
	Get(ctx context.Context, key string) (string, error)
	Decimal(ctx context.Context, key string) (decimal.Decimal, error)
	List(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value, description string) error
	NCTRPrice(ctx context.Context) (decimal.Decimal, error)
}

type settingsService struct {
	repo  repository.SettingRepository
	cache Cache
}

func NewSettingsService(repo repository.SettingRepository, cache Cache) SettingsService {
	if cache == nil {
		cache = nopCache{}
	}
	return &settingsService{repo: repo, cache: cache}
}

func (s *settingsService) Get(ctx context.Context, key string) (string, error) {
	row, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if v, ok := settingDefaults[key]; ok {
				return v, nil
			}
			return "", ErrNotFound
		}
		return "", err
	}
	return row.Value, nil
}

// Decimal parses a numeric setting. Unparseable values fall back to the default.
func (s *settingsService) Decimal(ctx context.Context, key string) (decimal.Decimal, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		def, ok := settingDefaults[key]
		if !ok {
			return decimal.Zero, ErrInvalidRequest
		}
		return decimal.RequireFromString(def), nil
	}
	return d, nil
}

// List merges stored rows over the defaults.
func (s *settingsService) List(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settingDefaults)+len(rows))
	for k, v := range settingDefaults {
		out[k] = v
	}
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (s *settingsService) Set(ctx context.Context, key, value, description string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidRequest
	}
	if _, numeric := settingDefaults[key]; numeric {
		if _, err := decimal.NewFromString(strings.TrimSpace(value)); err != nil {
			return ErrInvalidRequest
		}
	}
	if err := s.repo.Upsert(ctx, &model.SiteSetting{Key: key, Value: strings.TrimSpace(value), Description: description}); err != nil {
		return err
	}
	if key == SettingNCTRPriceUSD {
		s.cache.Delete(ctx, priceCacheKey)
	}
	return nil
}

func (s *settingsService) NCTRPrice(ctx context.Context) (decimal.Decimal, error) {
	if v, ok := s.cache.Get(ctx, priceCacheKey); ok {
		if d, err := decimal.NewFromString(v); err == nil {
			return d, nil
		}
	}
	d, err := s.Decimal(ctx, SettingNCTRPriceUSD)
	if err != nil {
		return decimal.Zero, err
	}
	s.cache.Set(ctx, priceCacheKey, d.String(), priceCacheTTL)
	return d, nil
}
