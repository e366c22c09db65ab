package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"id-collector-api/config"
	"id-collector-api/internal/logger"
	"id-collector-api/internal/repository"
	"id-collector-api/internal/routes"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	lg, err := logger.New(cfg.Log, cfg.AppName)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer lg.Close()

	if envErr != nil {
		lg.Debug().Msg(".env not found, using system environment")
	}

	db, err := config.ConnectDB(cfg.Database, lg.Logger)
	if err != nil {
		return err
	}
	defer config.CloseDB(db)

	lg.Info().Msg("Initializing database...")
	if err := repository.NewDeviceRepository(db).Migrate(context.Background()); err != nil {
		return err
	}
	lg.Info().Msg("Database initialized successfully")

	app := routes.NewApp(db, routes.Options{
		AppName:      cfg.AppName,
		MaxListLimit: cfg.MaxListLimit,
		Logger:       lg.Logger,
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		lg.Info().Msg("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			lg.Error().Err(err).Msg("shutdown")
		}
	}()

	lg.Info().Str("port", cfg.Port).Msg("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	lg.Info().Msg("Server stopped gracefully")
	return nil
}
