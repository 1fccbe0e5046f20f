package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/shopspring/decimal"
)

type PortfolioHandler struct {
	ledger service.LedgerService
	status service.StatusService
}

func NewPortfolioHandler(ledger service.LedgerService, status service.StatusService) *PortfolioHandler {
	return &PortfolioHandler{ledger: ledger, status: status}
}

type PortfolioResponse struct {
	Available   decimal.Decimal `json:"available"`
	Lock90      decimal.Decimal `json:"lock90"`
	Lock360     decimal.Decimal `json:"lock360"`
	Pending     decimal.Decimal `json:"pending"`
	TotalLocked decimal.Decimal `json:"totalLocked"`
	TotalEarned decimal.Decimal `json:"totalEarned"`
	Status      string          `json:"status"`
	UpdatedAt   string          `json:"updatedAt"`
}

func toPortfolioResponse(p *model.Portfolio) PortfolioResponse {
	return PortfolioResponse{
		Available:   p.AvailableNCTR,
		Lock90:      p.Lock90NCTR,
		Lock360:     p.Lock360NCTR,
		Pending:     p.PendingNCTR,
		TotalLocked: p.TotalLocked(),
		TotalEarned: p.TotalEarnedNCTR,
		Status:      p.OpportunityStatus,
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

type TransactionResponse struct {
	ID                    string          `json:"id"`
	Type                  string          `json:"type"`
	Source                string          `json:"source"`
	Amount                decimal.Decimal `json:"amount"`
	BaseAmount            decimal.Decimal `json:"baseAmount"`
	Multiplier            decimal.Decimal `json:"multiplier"`
	LockCategory          *string         `json:"lockCategory,omitempty"`
	LockID                *string         `json:"lockId,omitempty"`
	ExternalTransactionID *string         `json:"externalTransactionId,omitempty"`
	Status                string          `json:"status"`
	Description           string          `json:"description,omitempty"`
	CreatedAt             string          `json:"createdAt"`
	CompletedAt           *string         `json:"completedAt,omitempty"`
}

func toTransactionResponse(t *model.Transaction) TransactionResponse {
	var cat *string
	if t.LockCategory != nil {
		s := string(*t.LockCategory)
		cat = &s
	}
	return TransactionResponse{
		ID:                    t.ID,
		Type:                  string(t.TransactionType),
		Source:                string(t.Source),
		Amount:                t.NCTRAmount,
		BaseAmount:            t.BaseAmount,
		Multiplier:            t.Multiplier,
		LockCategory:          cat,
		LockID:                t.LockID,
		ExternalTransactionID: t.ExternalTransactionID,
		Status:                string(t.Status),
		Description:           t.Description,
		CreatedAt:             formatTime(t.CreatedAt),
		CompletedAt:           formatTimePtr(t.CompletedAt),
	}
}

// Get returns the portfolio together with the current status tier.
func (h *PortfolioHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	ctx := c.Request().Context()
	p, err := h.ledger.GetPortfolio(ctx, uid)
	if err != nil {
		return writeError(c, err, "fetch portfolio")
	}
	st, err := h.status.Status(ctx, uid)
	if err != nil {
		return writeError(c, err, "fetch status")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"portfolio": toPortfolioResponse(p),
		"status":    toStatusResponse(st),
	})
}

func (h *PortfolioHandler) ListTransactions(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	f := repository.TransactionFilter{
		Source: model.Source(c.QueryParam("source")),
		Status: model.TransactionStatus(c.QueryParam("status")),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	list, total, err := h.ledger.ListTransactions(c.Request().Context(), uid, f)
	if err != nil {
		return writeError(c, err, "fetch transactions")
	}
	resp := make([]TransactionResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toTransactionResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"transactions": resp,
		"total":        total,
	})
}
