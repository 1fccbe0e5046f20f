package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/service"
)

type SettingsHandler struct {
	svc service.SettingsService
}

func NewSettingsHandler(svc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

func (h *SettingsHandler) List(c echo.Context) error {
	kv, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err, "fetch settings")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"settings": kv})
}

func (h *SettingsHandler) Price(c echo.Context) error {
	p, err := h.svc.NCTRPrice(c.Request().Context())
	if err != nil {
		return writeError(c, err, "fetch price")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"priceUsd": p})
}

type settingRequest struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Put is admin only.
func (h *SettingsHandler) Put(c echo.Context) error {
	key := c.Param("key")
	var req settingRequest
	if err := c.Bind(&req); err != nil || key == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.Set(c.Request().Context(), key, req.Value, req.Description); err != nil {
		return writeError(c, err, "save setting")
	}
	return c.JSON(http.StatusOK, map[string]string{"key": key, "value": req.Value})
}
