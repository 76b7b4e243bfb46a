package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	specpkg "github.com/workflex/workflex/api"
	"github.com/workflex/workflex/internal/api"
	"github.com/workflex/workflex/internal/api/handler"
	"github.com/workflex/workflex/internal/app"
	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/board"
	"github.com/workflex/workflex/internal/config"
	"github.com/workflex/workflex/internal/reconciler"
	"github.com/workflex/workflex/internal/schedule"
	"github.com/workflex/workflex/internal/team"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open stores", "error", err)
		os.Exit(1)
	}
	defer stores.Close(context.Background())

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := auth.NewService(stores.Users, tokens, cfg.BcryptCost)
	teamService := team.NewService(stores.Teams, cfg.InviteTTL)

	var docPinger handler.Pinger
	if stores.Docs != nil {
		docPinger = stores.Docs
	}

	router := api.NewRouter(api.RouterDeps{
		DBPinger:        stores.DB,
		DocPinger:       docPinger,
		Version:         cfg.Version,
		OpenAPISpec:     specpkg.OpenAPISpec,
		AuthService:     authService,
		ScheduleService: schedule.NewService(stores.Schedules),
		TeamService:     teamService,
		BoardService:    board.NewService(stores.Teams, stores.Schedules),
	})

	sweeper := reconciler.New(stores.Teams, time.Duration(cfg.InviteSweepInterval)*time.Second)
	go sweeper.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting WorkFlex server", "port", cfg.Port, "version", cfg.Version, "teamStore", cfg.TeamStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(logHandler))
}
