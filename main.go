package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/giygas/drugs-api/config"
	"github.com/giygas/drugs-api/data"
	"github.com/giygas/drugs-api/handlers"
	"github.com/giygas/drugs-api/health"
	"github.com/giygas/drugs-api/logging"
	"github.com/giygas/drugs-api/provider"
	"github.com/giygas/drugs-api/query"
	"github.com/giygas/drugs-api/scheduler"
	"github.com/giygas/drugs-api/server"
	"github.com/giygas/drugs-api/validation"
)

func main() {
	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.InitLogger(logging.Options{
		Dir:            cfg.LogDir,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	logging.Info("Configuration loaded",
		"env", cfg.Env.String(),
		"provider", cfg.Provider.BaseURL,
		"model", cfg.Provider.Model,
		"dedupe_inflight", cfg.DedupeInFlight,
		"probe_interval", cfg.ProbeInterval.String(),
		"breaker_failures", cfg.Provider.BreakerFailures,
	)
	if !cfg.HasCredential() {
		logging.Warn("No provider API key configured, every drug query will fail until PROVIDER_API_KEY is set")
	}

	client := provider.NewClient(provider.Config{
		APIKey:      cfg.Provider.APIKey,
		BaseURL:     cfg.Provider.BaseURL,
		Model:       cfg.Provider.Model,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
		Timeout:     cfg.Provider.Timeout,
		Breaker: provider.BreakerConfig{
			Failures: uint32(cfg.Provider.BreakerFailures),
			Cooldown: cfg.Provider.BreakerCooldown,
		},
	})

	service := query.NewService(client, validation.NewSchemaValidator(), query.Options{
		Language:       cfg.PromptLanguage,
		DedupeInFlight: cfg.DedupeInFlight,
	})

	store := data.NewProbeContainer()
	store.SetServerStartTime(time.Now())

	probeScheduler := scheduler.NewScheduler(store, service, cfg.ProbeInterval, cfg.RequestTimeout)
	if err := probeScheduler.Start(); err != nil {
		logging.Error("Failed to start probe scheduler", "error", err)
		os.Exit(1)
	}

	healthChecker := health.NewHealthChecker(store, cfg.HasCredential(), cfg.ProbeInterval)
	handler := handlers.NewHTTPHandler(service, validation.NewInputValidator(), healthChecker, store, cfg.RequestTimeout)
	srv := server.NewServer(cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logging.Info("Received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logging.Error("Server stopped unexpectedly", "error", err)
		}
	}

	probeScheduler.Stop()

	// In-flight provider calls may take a while, give them the request timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}
