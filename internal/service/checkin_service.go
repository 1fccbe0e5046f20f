package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	dateLayout        = "2006-01-02"
	streakBonusPeriod = 7
	checkinGuardTTL   = 15 * time.Second
)

type CheckinResult struct {
	Checkin *model.DailyCheckin
	Award   *AwardResult
}

type StreakInfo struct {
	Streak         int
	CheckedInToday bool
	LastDate       string
	NextReward     decimal.Decimal
}

type CheckinService interface {
	CheckIn(ctx context.Context, userID string) (*CheckinResult, error)
	Streak(ctx context.Context, userID string) (*StreakInfo, error)
}

type checkinService struct {
	repo     repository.CheckinRepository
	settings SettingsService
	ledger   LedgerService
	guard    Guard
	now      func() time.Time
	log      zerolog.Logger
}

func NewCheckinService(repo repository.CheckinRepository, settings SettingsService, ledger LedgerService, guard Guard) CheckinService {
	if guard == nil {
		guard = nopGuard{}
	}
	return &checkinService{repo: repo, settings: settings, ledger: ledger, guard: guard, now: utcNow, log: logging.Component("checkin")}
}

// CheckIn records today's UTC check-in and credits the reward. The streak
// grows when the previous check-in was yesterday and restarts at 1 otherwise.
func (s *checkinService) CheckIn(ctx context.Context, userID string) (*CheckinResult, error) {
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	now := s.now().UTC()
	today := now.Format(dateLayout)

	key := "checkin:" + userID + ":" + today
	if ok, err := s.guard.Acquire(ctx, key, checkinGuardTTL); err == nil {
		if !ok {
			return nil, ErrAlreadyCheckedIn
		}
		defer s.guard.Release(ctx, key)
	}

	last, err := s.repo.Last(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	streak := 1
	if last != nil {
		if last.CheckinDate == today {
			return nil, ErrAlreadyCheckedIn
		}
		if last.CheckinDate == now.AddDate(0, 0, -1).Format(dateLayout) {
			streak = last.Streak + 1
		}
	}

	reward, err := s.rewardFor(ctx, streak)
	if err != nil {
		return nil, err
	}
	c := &model.DailyCheckin{UserID: userID, CheckinDate: today, Streak: streak, RewardNCTR: reward}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}

	res := &CheckinResult{Checkin: c}
	if !reward.IsPositive() {
		return res, nil
	}
	award, err := s.ledger.Award(ctx, AwardRequest{
		UserID:      userID,
		Source:      model.SourceDailyCheckin,
		Amount:      reward,
		ExternalID:  key,
		Description: fmt.Sprintf("Daily check-in, day %d", streak),
		Metadata:    map[string]interface{}{"streak": streak, "date": today},
	})
	if err != nil && !errors.Is(err, ErrDuplicate) {
		// let the user retry today
		if derr := s.repo.Delete(ctx, c.ID); derr != nil {
			logging.FromContext(ctx, s.log).Error().Err(derr).Uint64("checkin_id", c.ID).
				Str("date", today).Msg("rollback check-in after failed award")
		}
		return nil, err
	}
	res.Award = award
	return res, nil
}

func (s *checkinService) rewardFor(ctx context.Context, streak int) (decimal.Decimal, error) {
	reward, err := s.settings.Decimal(ctx, SettingCheckinReward)
	if err != nil {
		return decimal.Zero, err
	}
	if streak > 0 && streak%streakBonusPeriod == 0 {
		bonus, err := s.settings.Decimal(ctx, SettingCheckinStreakBonus)
		if err != nil {
			return decimal.Zero, err
		}
		reward = reward.Add(bonus)
	}
	return reward, nil
}

func (s *checkinService) Streak(ctx context.Context, userID string) (*StreakInfo, error) {
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	now := s.now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	info := &StreakInfo{}
	last, err := s.repo.Last(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	next := 1
	if last != nil {
		info.LastDate = last.CheckinDate
		switch last.CheckinDate {
		case today:
			info.Streak = last.Streak
			info.CheckedInToday = true
			next = last.Streak + 1
		case yesterday:
			info.Streak = last.Streak
			next = last.Streak + 1
		}
	}
	info.NextReward, err = s.rewardFor(ctx, next)
	if err != nil {
		return nil, err
	}
	return info, nil
}
