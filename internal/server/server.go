package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nctr-alliance/garden-backend/internal/config"
	"github.com/nctr-alliance/garden-backend/internal/handler"
	"github.com/nctr-alliance/garden-backend/internal/metrics"
	appmw "github.com/nctr-alliance/garden-backend/internal/middleware"
	"gorm.io/gorm"
)

type Server struct {
	e       *echo.Echo
	repos   *Repositories
	ready   *appmw.DBReady
	limiter *appmw.RateLimiter
	stop    chan struct{}
}

// New wires routes with no database. Requests that need one get 503 until
// SetDB is called.
func New(cfg *config.Config, verifier appmw.TokenVerifier, in *Infra, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(appmw.RequestContext)
	e.Use(appmw.AccessLog)
	e.Use(metrics.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", "x-api-secret"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(splitOrigins(cfg.AllowedOrigins)),
	}))

	if in == nil {
		in = &Infra{}
	}
	repos := NewRepositories(nil)
	svcs := NewServices(cfg, repos, in)
	ready := &appmw.DBReady{}
	limiter := appmw.NewRateLimiter(cfg.WebhookRatePerSecond, cfg.WebhookRateBurst)
	auth := appmw.NewAuthMiddleware(verifier, cfg.AdminAPISecret)

	portfolioHandler := handler.NewPortfolioHandler(svcs.Ledger, svcs.Status)
	lockHandler := handler.NewLockHandler(svcs.Locks)
	statusHandler := handler.NewStatusHandler(svcs.Status)
	profileHandler := handler.NewProfileHandler(svcs.Referrals)
	checkinHandler := handler.NewCheckinHandler(svcs.Checkins)
	settingsHandler := handler.NewSettingsHandler(svcs.Settings)
	learningHandler := handler.NewLearningHandler(svcs.Learning)
	notificationHandler := handler.NewNotificationHandler(svcs.Notifications)
	brandHandler := handler.NewBrandHandler(svcs.Sync)
	adminHandler := handler.NewAdminHandler(svcs.Ledger, svcs.Status, svcs.Jobs)
	webhookHandler := handler.NewWebhookHandler(svcs.Ledger, svcs.Settings, svcs.Referrals, repos.Profiles, in.Archiver, in.Mailer, handler.WebhookSecrets{
		Stripe:    cfg.StripeWebhookSecret,
		NCTRLive:  cfg.NCTRLiveWebhookSecret,
		FreeTrial: cfg.FreeTrialWebhookSecret,
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok":         true,
			"db":         ready.Ready(),
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api", ready.Middleware)
	api.GET("/settings", settingsHandler.List)
	api.GET("/price", settingsHandler.Price)
	api.GET("/status-levels", statusHandler.Levels)
	api.GET("/brands", brandHandler.List)
	api.GET("/learning/modules/:id", learningHandler.Get)

	api.GET("/me/portfolio", portfolioHandler.Get, auth.RequireAuth)
	api.GET("/me/transactions", portfolioHandler.ListTransactions, auth.RequireAuth)
	api.GET("/me/status", statusHandler.Get, auth.RequireAuth)
	api.GET("/me/locks", lockHandler.List, auth.RequireAuth)
	api.POST("/locks", lockHandler.Commit, auth.RequireAuth)
	api.POST("/locks/upgrade-all", lockHandler.UpgradeAll, auth.RequireAuth)
	api.POST("/locks/:id/upgrade", lockHandler.Upgrade, auth.RequireAuth)
	api.GET("/me/profile", profileHandler.Me, auth.RequireAuth)
	api.POST("/me/profile", profileHandler.Me, auth.RequireAuth)
	api.GET("/me/referrals", profileHandler.Referrals, auth.RequireAuth)
	api.POST("/referrals/apply", profileHandler.ApplyCode, auth.RequireAuth)
	api.POST("/checkins", checkinHandler.CheckIn, auth.RequireAuth)
	api.GET("/me/checkin-streak", checkinHandler.Streak, auth.RequireAuth)
	api.GET("/learning/modules", learningHandler.List, auth.RequireAuth)
	api.POST("/learning/modules/:id/complete", learningHandler.Complete, auth.RequireAuth)
	api.GET("/me/notifications", notificationHandler.List, auth.RequireAuth)
	api.POST("/me/notifications/read", notificationHandler.MarkRead, auth.RequireAuth)

	admin := api.Group("/admin", auth.RequireAdmin)
	admin.POST("/credits", adminHandler.Credit)
	admin.POST("/locks/release", adminHandler.ReleaseMatured)
	admin.POST("/sync/loyalize", adminHandler.SyncLoyalize)
	admin.POST("/sync/loyalize-stores", adminHandler.SyncStores)
	admin.POST("/sync/impact", adminHandler.SyncImpact)
	admin.PUT("/settings/:key", settingsHandler.Put)
	admin.PUT("/status-levels/:name", adminHandler.UpsertLevel)
	admin.POST("/learning/modules", learningHandler.Save)
	admin.PUT("/learning/modules/:id", learningHandler.Save)
	admin.POST("/learning/modules/:id/quiz", learningHandler.DraftQuiz)

	hooks := e.Group("/webhooks", limiter.Middleware, ready.Middleware)
	hooks.POST("/stripe", webhookHandler.Stripe)
	hooks.POST("/nctr-live", webhookHandler.NCTRLive)
	hooks.POST("/free-trial", webhookHandler.FreeTrial)

	stop := make(chan struct{})
	limiter.StartCleanup(5*time.Minute, stop)

	return &Server{e: e, repos: repos, ready: ready, limiter: limiter, stop: stop}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stop)
	return s.e.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// SetDB injects the connection into every repository and opens the API.
func (s *Server) SetDB(db *gorm.DB) {
	s.repos.SetDB(db)
	s.ready.SetReady(db != nil)
}

func splitOrigins(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// allowOrigin admits localhost and any host ending in one of suffixes.
func allowOrigin(suffixes []string) func(string) (bool, error) {
	return func(origin string) (bool, error) {
		u, err := url.Parse(strings.ToLower(origin))
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		host := u.Hostname()
		if host == "localhost" || host == "127.0.0.1" {
			return true, nil
		}
		for _, s := range suffixes {
			if host == s || strings.HasSuffix(host, "."+strings.TrimPrefix(s, ".")) {
				return true, nil
			}
		}
		return false, nil
	}
}
