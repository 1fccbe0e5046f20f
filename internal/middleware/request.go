package middleware

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/reqctx"
)

// RequestContext copies the request id set by echo's RequestID middleware
// into the request context for loggers.
func RequestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		if rid == "" {
			rid = c.Request().Header.Get(echo.HeaderXRequestID)
		}
		if rid != "" {
			c.SetRequest(c.Request().WithContext(reqctx.WithRID(c.Request().Context(), rid)))
		}
		return next(c)
	}
}

// AccessLog writes one zerolog line per request.
func AccessLog(next echo.HandlerFunc) echo.HandlerFunc {
	base := logging.Component("http")
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req := c.Request()
		status := c.Response().Status
		l := logging.FromContext(req.Context(), base)
		ev := l.Info()
		if status >= http.StatusInternalServerError {
			ev = l.Error()
		}
		ev.Str("method", req.Method).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.RealIP()).
			Msg("request")
		return nil
	}
}

// DBReady answers 503 until SetReady(true) is called. The API starts
// listening before the database connection is established.
type DBReady struct {
	ready atomic.Bool
}

func (d *DBReady) SetReady(v bool) {
	d.ready.Store(v)
}

func (d *DBReady) Ready() bool {
	return d.ready.Load()
}

func (d *DBReady) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !d.ready.Load() {
			return c.JSON(http.StatusServiceUnavailable, errorBody("db_not_ready", "database is not ready"))
		}
		return next(c)
	}
}
