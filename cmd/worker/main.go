package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nctr-alliance/garden-backend/internal/config"
	"github.com/nctr-alliance/garden-backend/internal/db"
	"github.com/nctr-alliance/garden-backend/internal/jobs"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "json")
		logging.Component("worker").Fatal().Err(err).Msg("config load error")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component("worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	infra := server.NewInfra(ctx, cfg)
	defer infra.Close()

	svcs := server.NewServices(cfg, server.NewRepositories(conn), infra)
	sched, err := jobs.NewScheduler(svcs.Jobs, jobs.Schedule{
		Release: cfg.ReleaseCron,
		Sync:    cfg.SyncCron,
		Brands:  cfg.BrandCron,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid cron spec")
	}
	sched.Start()

	<-ctx.Done()
	log.Info().Msg("stopping scheduler")
	stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	sched.Stop(stopCtx)
}
