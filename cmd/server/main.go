// Package main is the entry point for the Binamite session server.
//
// MAIN PACKAGE IN GO:
// main stays minimal. Its job is to:
// 1. Read configuration (internal/config, from environment variables)
// 2. Create the logger
// 3. Hand both to internal/server and start it
//
// All actual logic lives in the imported packages.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/binamite/internal/config"
	"github.com/sakif/binamite/internal/logging"
	"github.com/sakif/binamite/internal/server"
	"github.com/sakif/binamite/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no configured logger yet
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if cfg.GeneratedSecret {
		logger.Warn("SESSION_SECRET not set, using a random secret; browser sessions reset on restart")
	}

	// Validate already checked both of these.
	mode, _ := session.ParseMode(cfg.StoreMode)
	seed, _ := cfg.Seed()

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		SessionSecret:  cfg.SessionSecret,
		SessionMaxAge:  cfg.SessionMaxAge,
		StoreMode:      mode,
		IdleTTL:        cfg.SessionIdleTTL,
		SweepInterval:  cfg.SweepInterval,
		Seed:           seed,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
