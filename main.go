package main

import (
	"os"
	"os/signal"
	"syscall"

	"fishlog/internal/app"
	"fishlog/internal/config"
	"fishlog/internal/logging"
	"fishlog/internal/repositories"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// --- Database ---
	db, err := repositories.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}
	if err := repositories.Migrate(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to migrate database")
	}

	// --- Application ---
	application, err := app.New(cfg, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer func() {
		if err := application.Close(); err != nil {
			logging.Error().Err(err).Msg("error during shutdown")
		}
	}()

	// --- Start HTTP Server ---
	logging.Info().Str("port", cfg.AppPort).Msg("starting server")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := application.Fiber.Listen(cfg.AppPort); err != nil {
			logging.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	logging.Info().Msg("shutting down server")

	if err := application.Fiber.Shutdown(); err != nil {
		logging.Error().Err(err).Msg("error during Fiber shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logging.Info().Msg("server gracefully stopped")
}
