package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"recordlookup/internal/catalog"
	"recordlookup/internal/config"
	"recordlookup/internal/jobs"
	"recordlookup/internal/lookup"
	"recordlookup/internal/opendata"
	"recordlookup/internal/server"
	"recordlookup/internal/validation"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if valid, msg := validation.ValidateURL(cfg.SodaBaseURL); !valid {
		log.Fatalf("Invalid SODA_BASE_URL: %s", msg)
	}

	// Load dataset catalog
	cat, err := catalog.Load(cfg.DatasetsFile)
	if err != nil {
		log.Fatalf("Failed to load dataset catalog: %v", err)
	}
	slog.Info("dataset catalog loaded", "datasets", cat.Len(), "default", cat.DefaultID())

	client := opendata.New(opendata.Options{
		BaseURL:  cfg.SodaBaseURL,
		AppToken: cfg.SodaAppToken,
		Timeout:  cfg.SodaTimeout,
		Limit:    cfg.SodaQueryLimit,
	})
	if cfg.SodaAppToken == "" {
		slog.Warn("SODA_APP_TOKEN is not set, requests are subject to anonymous throttling")
	}

	srv := server.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background dataset checks
	if cfg.DatasetChecks {
		checker := jobs.NewHealthChecker(cat, client, cfg.DatasetCheckInterval)
		srv.Checks = checker
		go checker.Start(ctx)
	}

	svc := lookup.NewService(cat, client, srv.Views,
		lookup.WithStrictPolicy(lookup.MinLengthPolicy(cfg.FuzzyMinLength)),
		lookup.WithLogger(logger),
	)
	srv.RegisterRoutes(svc, cat)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	slog.Info("server exited")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
