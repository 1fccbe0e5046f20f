package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/shopspring/decimal"
)

type BrandHandler struct {
	svc service.SyncService
}

func NewBrandHandler(svc service.SyncService) *BrandHandler {
	return &BrandHandler{svc: svc}
}

type BrandResponse struct {
	ID             uint64          `json:"id"`
	Source         string          `json:"source"`
	ExternalID     string          `json:"externalId"`
	Name           string          `json:"name"`
	LogoURL        string          `json:"logoUrl,omitempty"`
	WebsiteURL     string          `json:"websiteUrl,omitempty"`
	NCTRPerDollar  decimal.Decimal `json:"nctrPerDollar"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
}

func (h *BrandHandler) List(c echo.Context) error {
	src := model.BrandSource(c.QueryParam("source"))
	limit := queryInt(c, "limit", 50)
	if limit == 0 || limit > 200 {
		limit = 50
	}
	list, total, err := h.svc.ListBrands(c.Request().Context(), src, limit, queryInt(c, "offset", 0))
	if err != nil {
		return writeError(c, err, "fetch brands")
	}
	resp := make([]BrandResponse, 0, len(list))
	for _, b := range list {
		resp = append(resp, BrandResponse{
			ID:             b.ID,
			Source:         string(b.Source),
			ExternalID:     b.ExternalID,
			Name:           b.Name,
			LogoURL:        b.LogoURL,
			WebsiteURL:     b.WebsiteURL,
			NCTRPerDollar:  b.NCTRPerDollar,
			CommissionRate: b.CommissionRate,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"brands": resp,
		"total":  total,
	})
}
