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
	"github.com/lutefd/navi-api/internal/mcptools"
	"github.com/lutefd/navi-api/internal/storage/postgres"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Error running mcp server", "error", err)
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

	views := dashboard.NewService(store, dashboard.Options{
		Locale:   stats.ParseLocale(cfg.Locale.Collation),
		Location: cfg.Locale.Location(),
	})
	server := mcptools.New(views).NewServer(version)

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	if cfg.MCP.APIKey == "" {
		logger.Warn("MCP_API_KEY is empty, the tool server is open")
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.MCP.Path, mcptools.WithRequestID(logger, mcptools.WithAPIKey(cfg.MCP.APIKey, handler)))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:              cfg.MCP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp listening", "addr", cfg.MCP.Addr, "path", cfg.MCP.Path)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
