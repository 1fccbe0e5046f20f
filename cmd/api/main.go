package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nctr-alliance/garden-backend/internal/config"
	"github.com/nctr-alliance/garden-backend/internal/db"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/server"
)

var (
	gitSHA    = "dev"
	buildTime = ""
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "json")
		logging.Component("main").Fatal().Err(err).Msg("config load error")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := server.NewVerifier(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("token auth disabled; only x-api-secret admin calls will pass")
	}
	infra := server.NewInfra(ctx, cfg)
	defer infra.Close()

	srv := server.New(cfg, verifier, infra, gitSHA, buildTime)
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting server")
		errCh <- srv.Start(addr)
	}()

	// the listener is up before the database so health checks pass during cold start
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Error().Err(err).Msg("db connect error")
			return
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(conn); err != nil {
				log.Error().Err(err).Msg("auto migrate error")
				return
			}
		}
		srv.SetDB(conn)
		log.Info().Str("driver", cfg.DBDriver).Msg("database ready")
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
		log.Info().Msg("server stopped")
	}
}
