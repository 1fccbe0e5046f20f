package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/nctr-alliance/garden-backend/internal/config"
	"github.com/nctr-alliance/garden-backend/internal/db"
	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/nctr-alliance/garden-backend/internal/seed"
)

func main() {
	if err := run(); err != nil {
		logging.Component("seed").Fatal().Err(err).Msg("seed failed")
	}
}

func run() error {
	file := flag.String("file", "", "seed YAML; the embedded default is used when empty")
	migrate := flag.Bool("migrate", true, "run migrations before seeding")
	flag.Parse()

	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component("seed")

	f, err := loadFile(*file)
	if err != nil {
		return err
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if *migrate {
		if err := db.Migrate(gdb); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	sum, err := seed.Apply(ctx, f,
		repository.NewStatusLevelRepository(gdb),
		repository.NewSettingRepository(gdb),
		repository.NewLearningRepository(gdb),
	)
	if err != nil {
		return err
	}
	log.Info().Int("levels", sum.Levels).Int("settings", sum.Settings).Int("modules", sum.Modules).Msg("seed complete")
	return nil
}

func loadFile(path string) (*seed.File, error) {
	if path == "" {
		return seed.Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return seed.Parse(b)
}
