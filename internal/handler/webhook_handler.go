package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/archive"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/mail"
	"github.com/nctr-alliance/garden-backend/internal/metrics"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/nctr-alliance/garden-backend/internal/webhook"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	maxWebhookBody = 1 << 20

	providerStripe    = "stripe"
	providerNCTRLive  = "nctr_live"
	providerFreeTrial = "free_trial"
)

type ProfileFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
}

type WebhookSecrets struct {
	Stripe    string
	NCTRLive  string
	FreeTrial string
}

type WebhookHandler struct {
	ledger    service.LedgerService
	settings  service.SettingsService
	referrals service.ReferralService
	profiles  ProfileFinder
	archiver  archive.Archiver
	mailer    mail.Mailer
	secrets   WebhookSecrets
	log       zerolog.Logger
}

func NewWebhookHandler(
	ledger service.LedgerService,
	settings service.SettingsService,
	referrals service.ReferralService,
	profiles ProfileFinder,
	archiver archive.Archiver,
	mailer mail.Mailer,
	secrets WebhookSecrets,
) *WebhookHandler {
	if archiver == nil {
		archiver = archive.NopArchiver{}
	}
	if mailer == nil {
		mailer = mail.NopMailer{}
	}
	return &WebhookHandler{
		ledger:    ledger,
		settings:  settings,
		referrals: referrals,
		profiles:  profiles,
		archiver:  archiver,
		mailer:    mailer,
		secrets:   secrets,
		log:       logging.Component("webhook"),
	}
}

// readBody fails with *http.MaxBytesError once maxWebhookBody is exceeded.
func readBody(c echo.Context) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
}

// rejectAuth answers a failed signature or secret check.
func (h *WebhookHandler) rejectAuth(c echo.Context, provider string, err error) error {
	metrics.RecordWebhook(provider, "rejected")
	logging.FromContext(c.Request().Context(), h.log).Warn().Err(err).Str("provider", provider).Msg("webhook rejected")
	switch {
	case errors.Is(err, webhook.ErrNotConfigured):
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("not_configured", "webhook is not configured"))
	case provider == providerNCTRLive:
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "invalid webhook secret"))
	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_signature", "signature verification failed"))
	}
}

func (h *WebhookHandler) badPayload(c echo.Context, provider string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		metrics.RecordWebhook(provider, "too_large")
		logging.FromContext(c.Request().Context(), h.log).Warn().Int64("limit", tooLarge.Limit).Str("provider", provider).Msg("webhook body too large")
		return c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse("payload_too_large", "payload too large"))
	}
	metrics.RecordWebhook(provider, "invalid")
	logging.FromContext(c.Request().Context(), h.log).Warn().Err(err).Str("provider", provider).Msg("webhook payload rejected")
	return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_payload", "invalid payload"))
}

func (h *WebhookHandler) archivePayload(ctx context.Context, provider, id string, body []byte) {
	uri, err := h.archiver.Archive(ctx, provider, id, body)
	if err != nil {
		logging.FromContext(ctx, h.log).Warn().Err(err).Str("provider", provider).Str("id", id).Msg("archive payload")
		return
	}
	if uri != "" {
		logging.FromContext(ctx, h.log).Debug().Str("uri", uri).Msg("payload archived")
	}
}

func (h *WebhookHandler) ignored(c echo.Context, provider string) error {
	metrics.RecordWebhook(provider, "ignored")
	return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
}

// respondAward turns a ledger outcome into the webhook reply. Duplicates are
// acknowledged with 200 so the sender stops retrying.
func (h *WebhookHandler) respondAward(c echo.Context, provider string, res *service.AwardResult, err error) error {
	switch {
	case errors.Is(err, service.ErrDuplicate):
		metrics.RecordWebhook(provider, "duplicate")
		return c.JSON(http.StatusOK, map[string]string{"status": "duplicate"})
	case errors.Is(err, service.ErrNotFound):
		return h.ignored(c, provider)
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidRequest):
		return h.badPayload(c, provider, err)
	case err != nil:
		metrics.RecordWebhook(provider, "error")
		return writeError(c, err, "process webhook")
	}
	metrics.RecordWebhook(provider, string(res.Outcome))
	resp := map[string]interface{}{"status": string(res.Outcome)}
	if res.Transaction != nil {
		resp["transactionId"] = res.Transaction.ID
		resp["amount"] = res.Transaction.NCTRAmount
	}
	return c.JSON(http.StatusOK, resp)
}

// Stripe credits paid Checkout Sessions as token purchases.
func (h *WebhookHandler) Stripe(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return h.badPayload(c, providerStripe, err)
	}
	ev, err := webhook.ParseStripe(body, c.Request().Header.Get("Stripe-Signature"), h.secrets.Stripe)
	if err != nil {
		return h.rejectAuth(c, providerStripe, err)
	}
	ctx := c.Request().Context()
	h.archivePayload(ctx, providerStripe, ev.ID, body)

	co, ok, err := webhook.CheckoutFromEvent(ev)
	if err != nil {
		return h.badPayload(c, providerStripe, err)
	}
	if !ok {
		return h.ignored(c, providerStripe)
	}
	res, err := h.ledger.Award(ctx, service.AwardRequest{
		UserID:      co.UserID,
		Source:      model.SourceTokenPurchase,
		Amount:      co.NCTRAmount,
		ExternalID:  co.SessionID,
		Description: "NCTR purchase",
		Metadata: map[string]interface{}{
			"amount_total": co.AmountTotal,
			"currency":     co.Currency,
			"event_id":     ev.ID,
		},
	})
	return h.respondAward(c, providerStripe, res, err)
}

// NCTRLive records purchases reported by NCTR-Live. The user is resolved by
// id, or by email when only user_email is sent.
func (h *WebhookHandler) NCTRLive(c echo.Context) error {
	if err := webhook.CheckSecret(c.Request().Header.Get("x-webhook-secret"), h.secrets.NCTRLive); err != nil {
		return h.rejectAuth(c, providerNCTRLive, err)
	}
	body, err := readBody(c)
	if err != nil {
		return h.badPayload(c, providerNCTRLive, err)
	}
	p, err := webhook.ParseNCTRLive(body)
	if err != nil {
		return h.badPayload(c, providerNCTRLive, err)
	}
	ctx := c.Request().Context()
	h.archivePayload(ctx, providerNCTRLive, p.ExternalTransactionID, body)

	userID := p.UserID
	if userID == "" {
		prof, err := h.profiles.FindByEmail(ctx, strings.ToLower(p.UserEmail))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordWebhook(providerNCTRLive, "unknown_user")
			return c.JSON(http.StatusNotFound, NewErrorResponse("user_not_found", "no user with that email"))
		}
		if err != nil {
			return writeError(c, err, "lookup user")
		}
		userID = prof.UserID
	}

	perDollar, err := h.settings.Decimal(ctx, service.SettingNCTRLivePerDollar)
	if err != nil {
		return writeError(c, err, "read settings")
	}
	res, err := h.ledger.Award(ctx, service.AwardRequest{
		UserID:      userID,
		Source:      model.SourceNCTRLive,
		Amount:      p.Amount(perDollar),
		ExternalID:  p.ExternalTransactionID,
		Status:      model.TransactionStatus(p.Status),
		Description: "Purchase at " + p.StoreName,
		Metadata: map[string]interface{}{
			"purchase_amount": p.PurchaseAmount.String(),
			"store":           p.StoreName,
		},
	})
	return h.respondAward(c, providerNCTRLive, res, err)
}

// FreeTrial grants the trial bonus into a 90LOCK and sends the welcome email.
func (h *WebhookHandler) FreeTrial(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return h.badPayload(c, providerFreeTrial, err)
	}
	if err := webhook.VerifyHMAC(body, c.Request().Header.Get("x-webhook-signature"), h.secrets.FreeTrial); err != nil {
		return h.rejectAuth(c, providerFreeTrial, err)
	}
	f, err := webhook.ParseFreeTrial(body)
	if err != nil {
		return h.badPayload(c, providerFreeTrial, err)
	}
	if f.Event != webhook.EventTrialStarted {
		return h.ignored(c, providerFreeTrial)
	}
	ctx := c.Request().Context()
	h.archivePayload(ctx, providerFreeTrial, f.TrialID, body)

	if h.referrals != nil {
		if _, err := h.referrals.EnsureProfile(ctx, f.UserID, f.Email, f.Name); err != nil {
			logging.FromContext(ctx, h.log).Warn().Err(err).Str("user_id", f.UserID).Msg("ensure profile")
		}
	}
	bonus, err := h.settings.Decimal(ctx, service.SettingFreeTrialBonus)
	if err != nil {
		return writeError(c, err, "read settings")
	}
	cat := model.Lock90
	res, err := h.ledger.Award(ctx, service.AwardRequest{
		UserID:       f.UserID,
		Source:       model.SourceFreeTrial,
		Amount:       bonus,
		ExternalID:   "free-trial:" + f.TrialID,
		LockCategory: &cat,
		Description:  "Free trial bonus",
	})
	if err == nil && f.Email != "" {
		subject, html := mail.FreeTrialWelcomeEmail(f.Name, bonus.String())
		if mErr := h.mailer.Send(ctx, f.Email, subject, html); mErr != nil {
			logging.FromContext(ctx, h.log).Warn().Err(mErr).Str("user_id", f.UserID).Msg("send welcome email")
		}
	}
	return h.respondAward(c, providerFreeTrial, res, err)
}
