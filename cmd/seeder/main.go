package main

import (
	"context"
	"fmt"
	"os"

	"id-collector-api/config"
	"id-collector-api/internal/database"
	"id-collector-api/internal/logger"
	"id-collector-api/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	// separate script, load .env by hand
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading config:", err)
		os.Exit(1)
	}

	lg, err := logger.New(cfg.Log, "seeder")
	if err != nil {
		fmt.Fprintln(os.Stderr, "creating logger:", err)
		os.Exit(1)
	}
	defer lg.Close()

	db, err := config.ConnectDB(cfg.Database, lg.Logger)
	if err != nil {
		lg.Fatal().Err(err).Msg("database")
	}
	defer config.CloseDB(db)

	ctx := context.Background()
	repo := repository.NewDeviceRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		lg.Fatal().Err(err).Msg("migrate")
	}

	lg.Info().Msg("seeding demo devices")
	count, err := database.SeedAll(ctx, repo, lg.Logger)
	if err != nil {
		lg.Fatal().Err(err).Msg("seeding failed")
	}
	lg.Info().Int64("total", count).Msg("seeding done")
}
