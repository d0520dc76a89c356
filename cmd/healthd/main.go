// Command healthd is the reference collaborator for healthctl: it stores
// profiles, diary entries and recommendation history in SQLite and asks
// Gemini for recommendations.
//
// MAIN STAYS SMALL:
// main only reads configuration, builds the logger and the optional model
// client, and hands everything to internal/server.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/health-diary/internal/config"
	"github.com/sakif/health-diary/internal/logger"
	"github.com/sakif/health-diary/internal/recommend"
	"github.com/sakif/health-diary/internal/server"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	// Ensure the data directory exists (like `mkdir -p`).
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			log.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	// The model is optional: without a key the server still serves
	// everything except new recommendations.
	var generator recommend.Generator
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, recommendations are disabled")
	} else {
		gen, err := recommend.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error("failed to create Gemini client", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("recommendations enabled", slog.String("model", gen.Model()))
		generator = gen
	}

	srv, err := server.New(*cfg, log, generator)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(ctx); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
