package service

import (
	"context"
	"errors"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/partner/impact"
	"github.com/nctr-alliance/garden-backend/internal/partner/loyalize"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const maxSyncPages = 50

type LoyalizeAPI interface {
	Transactions(ctx context.Context, from, to time.Time, page int) ([]loyalize.Transaction, bool, error)
	Stores(ctx context.Context, page int) ([]loyalize.Store, bool, error)
}

type ImpactAPI interface {
	Campaigns(ctx context.Context, page int) ([]impact.Campaign, bool, error)
}

type SyncSummary struct {
	Fetched    int `json:"fetched"`
	Credited   int `json:"credited"`
	Pending    int `json:"pending"`
	Promoted   int `json:"promoted"`
	Failed     int `json:"failed"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

type BrandSyncSummary struct {
	Fetched  int `json:"fetched"`
	Upserted int `json:"upserted"`
	Errors   int `json:"errors"`
}

type SyncService interface {
	SyncLoyalizeTransactions(ctx context.Context, from, to time.Time) (*SyncSummary, error)
	SyncLoyalizeStores(ctx context.Context) (*BrandSyncSummary, error)
	SyncImpactCampaigns(ctx context.Context) (*BrandSyncSummary, error)
	ListBrands(ctx context.Context, source model.BrandSource, limit, offset int) ([]model.Brand, int64, error)
}

type syncService struct {
	loyalize LoyalizeAPI
	impact   ImpactAPI
	brands   repository.BrandRepository
	settings SettingsService
	ledger   LedgerService
	log      zerolog.Logger
	now      func() time.Time
}

// NewSyncService accepts nil partner clients; the matching sync then reports ErrUnavailable.
func NewSyncService(l LoyalizeAPI, i ImpactAPI, brands repository.BrandRepository, settings SettingsService, ledger LedgerService) SyncService {
	return &syncService{
		loyalize: l,
		impact:   i,
		brands:   brands,
		settings: settings,
		ledger:   ledger,
		log:      logging.Component("sync"),
		now:      utcNow,
	}
}

// loyalizeStatus maps partner status onto the ledger. ok is false for
// statuses the ledger ignores.
func loyalizeStatus(s string) (model.TransactionStatus, bool) {
	switch s {
	case "PENDING", "PROCESSING":
		return model.TxStatusPending, true
	case "APPROVED", "PAID", "CONFIRMED", "LOCKED":
		return model.TxStatusCompleted, true
	case "REJECTED", "CANCELLED", "CANCELED", "DECLINED", "REVERSED":
		return model.TxStatusFailed, true
	default:
		return "", false
	}
}

func (s *syncService) SyncLoyalizeTransactions(ctx context.Context, from, to time.Time) (*SyncSummary, error) {
	if s.loyalize == nil {
		return nil, ErrUnavailable
	}
	l := logging.FromContext(ctx, s.log)
	fallback, err := s.settings.Decimal(ctx, SettingDefaultNCTRPerDollar)
	if err != nil {
		return nil, err
	}
	rates := map[string]decimal.Decimal{}
	sum := &SyncSummary{}

	for page := 0; page < maxSyncPages; page++ {
		txs, more, err := s.loyalize.Transactions(ctx, from, to, page)
		if err != nil {
			return sum, err
		}
		sum.Fetched += len(txs)
		for _, t := range txs {
			s.applyLoyalize(ctx, t, rates, fallback, sum)
		}
		if !more {
			break
		}
	}
	l.Info().Interface("summary", sum).Msg("loyalize transactions synced")
	return sum, nil
}

func (s *syncService) applyLoyalize(ctx context.Context, t loyalize.Transaction, rates map[string]decimal.Decimal, fallback decimal.Decimal, sum *SyncSummary) {
	status, ok := loyalizeStatus(t.Status)
	if !ok || t.UserID == "" {
		sum.Skipped++
		return
	}
	rate, cached := rates[t.StoreID]
	if !cached {
		rate = fallback
		if b, err := s.brands.FindByExternal(ctx, model.BrandSourceLoyalize, t.StoreID); err == nil && b.NCTRPerDollar.IsPositive() {
			rate = b.NCTRPerDollar
		}
		rates[t.StoreID] = rate
	}

	res, err := s.ledger.Award(ctx, AwardRequest{
		UserID:      t.UserID,
		Source:      model.SourceAffiliatePurchase,
		Amount:      t.SaleAmount.Mul(rate).Round(8),
		ExternalID:  "loyalize:" + t.ID,
		Status:      status,
		Description: "Purchase at " + t.StoreName,
		Metadata: map[string]interface{}{
			"store_id":    t.StoreID,
			"sale_amount": t.SaleAmount.String(),
			"commission":  t.Commission.String(),
			"partner":     "loyalize",
		},
	})
	switch {
	case err == nil:
		switch res.Outcome {
		case OutcomeCredited:
			sum.Credited++
		case OutcomePending:
			sum.Pending++
		case OutcomePromoted:
			sum.Promoted++
		case OutcomeFailed:
			sum.Failed++
		}
	case errors.Is(err, ErrDuplicate):
		sum.Duplicates++
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInFlight):
		sum.Skipped++
	default:
		sum.Errors++
		logging.FromContext(ctx, s.log).Error().Err(err).Str("loyalize_id", t.ID).Msg("apply loyalize transaction")
	}
}

func (s *syncService) SyncLoyalizeStores(ctx context.Context) (*BrandSyncSummary, error) {
	if s.loyalize == nil {
		return nil, ErrUnavailable
	}
	now := s.now()
	sum := &BrandSyncSummary{}
	for page := 0; page < maxSyncPages; page++ {
		stores, more, err := s.loyalize.Stores(ctx, page)
		if err != nil {
			return sum, err
		}
		sum.Fetched += len(stores)
		for _, st := range stores {
			s.upsertBrand(ctx, &model.Brand{
				Source:         model.BrandSourceLoyalize,
				ExternalID:     st.ID,
				Name:           st.Name,
				LogoURL:        st.LogoURL,
				WebsiteURL:     st.WebsiteURL,
				CommissionRate: st.CommissionRate,
				Active:         st.Active,
				Raw:            rawJSON(st.Raw),
				SyncedAt:       now,
			}, sum)
		}
		if !more {
			break
		}
	}
	return sum, nil
}

func (s *syncService) SyncImpactCampaigns(ctx context.Context) (*BrandSyncSummary, error) {
	if s.impact == nil {
		return nil, ErrUnavailable
	}
	now := s.now()
	sum := &BrandSyncSummary{}
	for page := 1; page <= maxSyncPages; page++ {
		campaigns, more, err := s.impact.Campaigns(ctx, page)
		if err != nil {
			return sum, err
		}
		sum.Fetched += len(campaigns)
		for _, c := range campaigns {
			s.upsertBrand(ctx, &model.Brand{
				Source:     model.BrandSourceImpact,
				ExternalID: c.ID,
				Name:       c.Name,
				LogoURL:    c.LogoURL,
				WebsiteURL: c.WebsiteURL,
				Active:     c.Active,
				Raw:        rawJSON(c.Raw),
				SyncedAt:   now,
			}, sum)
		}
		if !more {
			break
		}
	}
	return sum, nil
}

func (s *syncService) upsertBrand(ctx context.Context, b *model.Brand, sum *BrandSyncSummary) {
	if err := s.brands.Upsert(ctx, b); err != nil {
		sum.Errors++
		logging.FromContext(ctx, s.log).Error().Err(err).Str("source", string(b.Source)).Str("external_id", b.ExternalID).Msg("upsert brand")
		return
	}
	sum.Upserted++
}

func (s *syncService) ListBrands(ctx context.Context, source model.BrandSource, limit, offset int) ([]model.Brand, int64, error) {
	return s.brands.List(ctx, source, true, limit, offset)
}

func rawJSON(raw string) datatypes.JSON {
	if raw == "" {
		return nil
	}
	return datatypes.JSON(raw)
}
