package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/shopspring/decimal"
)

type StatusHandler struct {
	svc service.StatusService
}

func NewStatusHandler(svc service.StatusService) *StatusHandler {
	return &StatusHandler{svc: svc}
}

type StatusResponse struct {
	Tier       string           `json:"tier"`
	Multiplier decimal.Decimal  `json:"multiplier"`
	Locked360  decimal.Decimal  `json:"locked360"`
	NextTier   *string          `json:"nextTier,omitempty"`
	ToNext     *decimal.Decimal `json:"toNext,omitempty"`
}

func toStatusResponse(s *service.StatusInfo) StatusResponse {
	r := StatusResponse{
		Tier:       string(s.Tier),
		Multiplier: s.Multiplier,
		Locked360:  s.Locked360,
	}
	if s.HasNext {
		next := string(s.NextTier)
		toNext := s.ToNext
		r.NextTier = &next
		r.ToNext = &toNext
	}
	return r
}

type LevelResponse struct {
	Name             string          `json:"name"`
	MinLockedNCTR    decimal.Decimal `json:"minLockedNctr"`
	RewardMultiplier decimal.Decimal `json:"rewardMultiplier"`
	Description      string          `json:"description"`
	SortOrder        int             `json:"sortOrder"`
}

func toLevelResponse(l model.StatusLevel) LevelResponse {
	return LevelResponse{
		Name:             l.Name,
		MinLockedNCTR:    l.MinLockedNCTR,
		RewardMultiplier: l.RewardMultiplier,
		Description:      l.Description,
		SortOrder:        l.SortOrder,
	}
}

func (h *StatusHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	st, err := h.svc.Status(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, "fetch status")
	}
	return c.JSON(http.StatusOK, toStatusResponse(st))
}

func (h *StatusHandler) Levels(c echo.Context) error {
	levels, err := h.svc.ListLevels(c.Request().Context())
	if err != nil {
		return writeError(c, err, "fetch status levels")
	}
	resp := make([]LevelResponse, 0, len(levels))
	for _, l := range levels {
		resp = append(resp, toLevelResponse(l))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"levels": resp})
}
