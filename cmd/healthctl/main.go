// Command healthctl is the terminal client of the health diary.
//
// The collaborator address comes from HEALTH_API_URL (or .env) and can be
// overridden per run:
//
//	healthctl -api http://localhost:8000/api
//
// The terminal belongs to the UI, so logs go to HEALTH_LOG_FILE.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sakif/health-diary/internal/api"
	"github.com/sakif/health-diary/internal/config"
	"github.com/sakif/health-diary/internal/diary"
	"github.com/sakif/health-diary/internal/logger"
	"github.com/sakif/health-diary/internal/session"
	"github.com/sakif/health-diary/internal/tui"
	"github.com/sakif/health-diary/internal/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "healthctl:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	apiFlag := flag.String("api", "", "collaborator base URL (overrides HEALTH_API_URL)")
	flag.Parse()
	if *apiFlag != "" {
		cfg.APIURL = strings.TrimRight(*apiFlag, "/")
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	log := logger.Setup(logFile, cfg.LogLevel, "text")
	log.Info("healthctl starting", slog.String("api", cfg.APIURL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// api.Client → session + diary store → view controller → terminal UI.
	client := api.NewClient(cfg.APIURL, nil, log)

	sessions := session.NewManager(client, session.New(), log)
	store := diary.NewStore(client, log)
	sessions.OnReset(store.Clear)

	controller := view.NewController(sessions, store, client, view.WithLogger(log))

	m := tui.New(ctx, controller, client, cfg.HistoryLimit, client.BaseURL())
	if err := tui.Run(ctx, m); err != nil {
		return err
	}

	log.Info("healthctl stopped")
	return nil
}
