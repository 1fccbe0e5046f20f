package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/service"
)

type CheckinHandler struct {
	svc service.CheckinService
}

func NewCheckinHandler(svc service.CheckinService) *CheckinHandler {
	return &CheckinHandler{svc: svc}
}

func (h *CheckinHandler) CheckIn(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	res, err := h.svc.CheckIn(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, "check in")
	}
	resp := map[string]interface{}{
		"date":   res.Checkin.CheckinDate,
		"streak": res.Checkin.Streak,
		"reward": res.Checkin.RewardNCTR,
	}
	if res.Award != nil && res.Award.Portfolio != nil {
		resp["portfolio"] = toPortfolioResponse(res.Award.Portfolio)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *CheckinHandler) Streak(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	st, err := h.svc.Streak(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, "fetch streak")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"streak":         st.Streak,
		"checkedInToday": st.CheckedInToday,
		"lastDate":       st.LastDate,
		"nextReward":     st.NextReward,
	})
}
