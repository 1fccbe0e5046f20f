package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/nctr-alliance/garden-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{service.ErrNotFound, http.StatusNotFound, "not_found", "not found"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden", "not allowed"},
	{service.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "amount must be positive"},
	{service.ErrInvalidRequest, http.StatusBadRequest, "bad_request", "invalid request"},
	{service.ErrInsufficientBalance, http.StatusConflict, "insufficient_balance", "insufficient available NCTR"},
	{service.ErrNotUpgradeable, http.StatusConflict, "not_upgradeable", "lock is not eligible for upgrade"},
	{service.ErrDuplicate, http.StatusConflict, "duplicate", "already processed"},
	{service.ErrInFlight, http.StatusConflict, "in_flight", "already being processed"},
	{service.ErrAlreadyCheckedIn, http.StatusConflict, "already_checked_in", "already checked in today"},
	{service.ErrAlreadyReferred, http.StatusConflict, "already_referred", "a referral code was already applied"},
	{service.ErrSelfReferral, http.StatusBadRequest, "self_referral", "cannot use your own referral code"},
	{service.ErrInvalidCode, http.StatusBadRequest, "invalid_code", "referral code not found"},
	{service.ErrAlreadyCompleted, http.StatusConflict, "already_completed", "module already completed"},
	{service.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "integration not configured"},
	{repository.ErrDBNotReady, http.StatusServiceUnavailable, "db_not_ready", "database is not ready"},
}

// writeError maps service errors to the JSON envelope. Unknown errors are
// logged and reported as a generic 500.
func writeError(c echo.Context, err error, what string) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return c.JSON(m.status, NewErrorResponse(m.code, m.message))
		}
	}
	logging.FromContext(c.Request().Context(), logging.Component("http")).
		Error().Err(err).Str("path", c.Path()).Msg(what)
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to "+what))
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
}

func queryInt(c echo.Context, name string, def int) int {
	if s := c.QueryParam(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			return v
		}
	}
	return def
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
