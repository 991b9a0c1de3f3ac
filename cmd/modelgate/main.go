// Package main is the entry point for the modelgate gateway server.
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
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"modelgate/config"
	"modelgate/internal/catalog"
	"modelgate/internal/core"
	"modelgate/internal/observability"
	"modelgate/internal/providers"
	"modelgate/internal/providers/openai"
	"modelgate/internal/server"
)

func main() {
	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	slog.Info("starting modelgate")

	store, err := loadStore(cfg)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	var fallback core.Provider = openai.New(openai.Config{
		APIKey:  cfg.Fallback.APIKey,
		BaseURL: cfg.Fallback.BaseURL,
	})

	var metrics *observability.Metrics
	if cfg.Server.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.DefaultRegisterer)
		fallback = metrics.Instrument(fallback)
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Server.MetricsEndpoint)
	}

	resolver := providers.NewResolver(providers.NewFactory(), store, store, fallback, logger)
	if metrics != nil {
		resolver.InstrumentWith(metrics.Instrument)
	}

	if cfg.Server.MasterKey == "" {
		slog.Warn("MASTER_KEY not set, server accepts unauthenticated requests")
	}

	srv := server.New(resolver, store, &server.Config{
		MasterKey:       cfg.Server.MasterKey,
		MetricsEnabled:  cfg.Server.MetricsEnabled,
		MetricsEndpoint: cfg.Server.MetricsEndpoint,
		BodySizeLimit:   cfg.Server.BodySizeLimit,
		Logger:          logger,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	slog.Info("starting server", "address", addr)

	if err := srv.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
		} else {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}
}

// newLogger selects the slog handler: tinted text for development, JSON for
// aggregation.
func newLogger(cfg config.LogConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadStore(cfg *config.Config) (*catalog.MemoryStore, error) {
	if cfg.CatalogPath == "" {
		slog.Info("no catalog configured, all requests use the fallback provider")
		return catalog.NewMemoryStore(), nil
	}
	store, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	slog.Info("catalog loaded", "path", cfg.CatalogPath, "models", len(store.List(context.Background())))
	return store, nil
}
