package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/shopspring/decimal"
)

type LockHandler struct {
	svc service.LockService
}

func NewLockHandler(svc service.LockService) *LockHandler {
	return &LockHandler{svc: svc}
}

type LockResponse struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	LockCategory   string          `json:"lockCategory"`
	CommitmentDays int             `json:"commitmentDays"`
	LockDate       string          `json:"lockDate"`
	UnlockDate     string          `json:"unlockDate"`
	Status         string          `json:"status"`
	CanUpgrade     bool            `json:"canUpgrade"`
	UpgradedAt     *string         `json:"upgradedAt,omitempty"`
	UnlockedAt     *string         `json:"unlockedAt,omitempty"`
}

func toLockResponse(l *model.Lock) LockResponse {
	return LockResponse{
		ID:             l.ID,
		Amount:         l.Amount,
		LockCategory:   string(l.LockCategory),
		CommitmentDays: l.CommitmentDays,
		LockDate:       formatTime(l.LockDate),
		UnlockDate:     formatTime(l.UnlockDate),
		Status:         string(l.Status),
		CanUpgrade:     l.Upgradeable(),
		UpgradedAt:     formatTimePtr(l.UpgradedAt),
		UnlockedAt:     formatTimePtr(l.UnlockedAt),
	}
}

func (h *LockHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	list, err := h.svc.List(c.Request().Context(), uid, model.LockStatus(c.QueryParam("status")))
	if err != nil {
		return writeError(c, err, "fetch locks")
	}
	resp := make([]LockResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toLockResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"locks": resp})
}

type commitRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	LockCategory string          `json:"lockCategory"`
}

func (h *LockHandler) Commit(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	var req commitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	cat := model.LockCategory(strings.ToUpper(strings.TrimSpace(req.LockCategory)))
	lock, p, err := h.svc.Commit(c.Request().Context(), uid, req.Amount, cat)
	if err != nil {
		return writeError(c, err, "commit")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"lock":      toLockResponse(lock),
		"portfolio": toPortfolioResponse(p),
	})
}

// Upgrade is upgrade_lock_to_360.
func (h *LockHandler) Upgrade(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	lock, p, err := h.svc.UpgradeTo360(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return writeError(c, err, "upgrade lock")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"lock":      toLockResponse(lock),
		"portfolio": toPortfolioResponse(p),
	})
}

// UpgradeAll is upgrade_all_90locks_to_360.
func (h *LockHandler) UpgradeAll(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	sum, err := h.svc.UpgradeAll90To360(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, "upgrade locks")
	}
	locks := make([]LockResponse, 0, len(sum.Locks))
	for i := range sum.Locks {
		locks = append(locks, toLockResponse(&sum.Locks[i]))
	}
	resp := map[string]interface{}{
		"upgraded": sum.Count,
		"total":    sum.Total,
		"locks":    locks,
	}
	if sum.Portfolio != nil {
		resp["portfolio"] = toPortfolioResponse(sum.Portfolio)
	}
	return c.JSON(http.StatusOK, resp)
}
