package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/nctr-alliance/garden-backend/internal/tier"
	"github.com/shopspring/decimal"
)

// JobRunner is implemented by jobs.Runner.
type JobRunner interface {
	ReleaseMatured(ctx context.Context) (*service.ReleaseSummary, error)
	SyncLoyalize(ctx context.Context, from, to time.Time) (*service.SyncSummary, error)
	SyncStores(ctx context.Context) (*service.BrandSyncSummary, error)
	SyncImpact(ctx context.Context) (*service.BrandSyncSummary, error)
}

type AdminHandler struct {
	ledger service.LedgerService
	status service.StatusService
	jobs   JobRunner
}

func NewAdminHandler(ledger service.LedgerService, status service.StatusService, jobs JobRunner) *AdminHandler {
	return &AdminHandler{ledger: ledger, status: status, jobs: jobs}
}

type creditRequest struct {
	UserID       string          `json:"userId"`
	Amount       decimal.Decimal `json:"amount"`
	LockCategory string          `json:"lockCategory"`
	ToAvailable  bool            `json:"toAvailable"`
	ExternalID   string          `json:"externalId"`
	Description  string          `json:"description"`
}

// Credit grants a manual_credit award. Without lockCategory or toAvailable the
// amount lands in available NCTR.
func (h *AdminHandler) Credit(c echo.Context) error {
	var req creditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	ar := service.AwardRequest{
		UserID:      req.UserID,
		Source:      model.SourceManualCredit,
		Amount:      req.Amount,
		ExternalID:  req.ExternalID,
		ToAvailable: req.ToAvailable,
		Description: req.Description,
	}
	if cat := strings.ToUpper(strings.TrimSpace(req.LockCategory)); cat != "" && !req.ToAvailable {
		lc := model.LockCategory(cat)
		ar.LockCategory = &lc
	}
	if uid, _ := c.Get("uid").(string); uid != "" {
		ar.Metadata = map[string]interface{}{"granted_by": uid}
	}
	res, err := h.ledger.Award(c.Request().Context(), ar)
	if err != nil {
		return writeError(c, err, "credit")
	}
	resp := map[string]interface{}{"status": string(res.Outcome)}
	if res.Transaction != nil {
		resp["transaction"] = toTransactionResponse(res.Transaction)
	}
	if res.Lock != nil {
		resp["lock"] = toLockResponse(res.Lock)
	}
	if res.Portfolio != nil {
		resp["portfolio"] = toPortfolioResponse(res.Portfolio)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *AdminHandler) ReleaseMatured(c echo.Context) error {
	sum, err := h.jobs.ReleaseMatured(c.Request().Context())
	if err != nil {
		return writeError(c, err, "release matured locks")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"scanned":  sum.Scanned,
		"released": sum.Released,
		"skipped":  sum.Skipped,
		"failed":   sum.Failed,
		"total":    sum.Total,
	})
}

type syncRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func parseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

func (h *AdminHandler) SyncLoyalize(c echo.Context) error {
	var req syncRequest
	_ = c.Bind(&req)
	from, okFrom := parseDay(req.From)
	to, okTo := parseDay(req.To)
	if !okFrom || !okTo || (!from.IsZero() && !to.IsZero() && !from.Before(to)) {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid date range"))
	}
	sum, err := h.jobs.SyncLoyalize(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err, "sync loyalize")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"fetched":    sum.Fetched,
		"credited":   sum.Credited,
		"pending":    sum.Pending,
		"promoted":   sum.Promoted,
		"failed":     sum.Failed,
		"duplicates": sum.Duplicates,
		"skipped":    sum.Skipped,
		"errors":     sum.Errors,
	})
}

func brandSyncResponse(sum *service.BrandSyncSummary) map[string]interface{} {
	return map[string]interface{}{
		"fetched":  sum.Fetched,
		"upserted": sum.Upserted,
		"errors":   sum.Errors,
	}
}

func (h *AdminHandler) SyncStores(c echo.Context) error {
	sum, err := h.jobs.SyncStores(c.Request().Context())
	if err != nil {
		return writeError(c, err, "sync loyalize stores")
	}
	return c.JSON(http.StatusOK, brandSyncResponse(sum))
}

func (h *AdminHandler) SyncImpact(c echo.Context) error {
	sum, err := h.jobs.SyncImpact(c.Request().Context())
	if err != nil {
		return writeError(c, err, "sync impact campaigns")
	}
	return c.JSON(http.StatusOK, brandSyncResponse(sum))
}

type levelRequest struct {
	MinLockedNCTR    decimal.Decimal `json:"minLockedNctr"`
	RewardMultiplier decimal.Decimal `json:"rewardMultiplier"`
	Description      string          `json:"description"`
	SortOrder        int             `json:"sortOrder"`
}

func (h *AdminHandler) UpsertLevel(c echo.Context) error {
	t, ok := tier.Parse(c.Param("name"))
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unknown tier"))
	}
	var req levelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	l := &model.StatusLevel{
		Name:             t.String(),
		MinLockedNCTR:    req.MinLockedNCTR,
		RewardMultiplier: req.RewardMultiplier,
		Description:      req.Description,
		SortOrder:        req.SortOrder,
	}
	if err := h.status.UpsertLevel(c.Request().Context(), l); err != nil {
		return writeError(c, err, "save status level")
	}
	return c.JSON(http.StatusOK, toLevelResponse(*l))
}
