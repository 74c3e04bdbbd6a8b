package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lutefd/navi-api/internal/config"
	"github.com/lutefd/navi-api/internal/dashboard"
	"github.com/lutefd/navi-api/internal/domain/stats"
	"github.com/lutefd/navi-api/internal/events"
	httpserver "github.com/lutefd/navi-api/internal/http"
	"github.com/lutefd/navi-api/internal/metrics"
	"github.com/lutefd/navi-api/internal/notify"
	"github.com/lutefd/navi-api/internal/projections"
	"github.com/lutefd/navi-api/internal/scheduler"
	"github.com/lutefd/navi-api/internal/seed"
	"github.com/lutefd/navi-api/internal/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Server.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.Server.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	loc := cfg.Locale.Location()
	bus := events.NewBus()
	projection := projections.NewService(store)
	projection.Subscribe(bus)

	seeder := seed.NewSeeder(store, os.DirFS(cfg.Server.SeedDir), bus, logger)
	seedOnStartup(ctx, seeder, logger)

	if _, err := projection.RecomputeSeasons(ctx); err != nil {
		logger.Error("initial season projection failed", "error", err)
	}

	var notifier notify.Notifier = notify.NewLog(logger)
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			logger.Error("telegram disabled", "error", err)
		} else {
			notifier = tg
		}
	}

	sched, err := scheduler.NewScheduler(scheduler.Deps{
		Projector: projection,
		Fixtures:  store,
		Notifier:  notifier,
		Location:  loc,
		Jobs:      cfg.Jobs,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Error("Error stopping scheduler", "error", err)
		}
	}()

	views := dashboard.NewService(store, dashboard.Options{
		Locale:    stats.ParseLocale(cfg.Locale.Collation),
		TiePolicy: stats.TiesSequential,
		Location:  loc,
	})
	srv := httpserver.NewServer(httpserver.Dependencies{
		Store:      store,
		Dashboard:  views,
		Bus:        bus,
		Seeder:     seeder,
		Metrics:    metrics.NewRecorder(),
		AdminToken: cfg.Server.AdminToken,
		CORSOrigin: cfg.Server.CORSOrigin,
		Logger:     logger,
	})
	if cfg.Server.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is empty, admin routes are disabled")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type startupSeeder interface {
	SeedIfEmpty(ctx context.Context) (seed.Result, error)
}

// seedOnStartup imports the seed directory into an empty database. A failed
// import leaves the database empty and the API still starts.
func seedOnStartup(ctx context.Context, seeder startupSeeder, logger *slog.Logger) {
	res, err := seeder.SeedIfEmpty(ctx)
	if err != nil {
		logger.Warn("startup seed failed", "error", err)
		return
	}
	logger.Info("startup seed", "done", res.Done, "message", res.Message)
}
