// Package main provides the entry point for the research discovery service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ismart/research-discovery-service/internal/config"
	"github.com/ismart/research-discovery-service/internal/observability"
	"github.com/ismart/research-discovery-service/internal/pipeline"
	"github.com/ismart/research-discovery-service/internal/ranking"
	httpserver "github.com/ismart/research-discovery-service/internal/server/http"
	"github.com/ismart/research-discovery-service/internal/sources"
	"github.com/ismart/research-discovery-service/internal/sources/crossref"
	"github.com/ismart/research-discovery-service/internal/sources/openalex"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("research-discovery-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the journal ranking table. A missing or corrupt file downgrades
	// ranking enrichment rather than failing startup.
	rankings, err := ranking.Load(cfg.Ranking.Path)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.Ranking.Path).
			Msg("ranking table unavailable, journal ranking will be limited")
		rankings = ranking.Empty()
	} else {
		logger.Info().Int("records", rankings.Len()).Msg("ranking table loaded")
	}

	// Metrics registry.
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	// Upstream clients share one governor so request spacing holds
	// process-wide per source.
	governor := sources.NewGovernor(cfg.Sources.MinRequestSpacing)

	var recorder sources.RequestRecorder
	if metrics != nil {
		recorder = metrics
	}

	discovery := openalex.New(openalex.Config{
		BaseURL:        cfg.Sources.OpenAlex.BaseURL,
		Email:          cfg.Sources.OpenAlex.Email,
		PerPage:        cfg.Sources.OpenAlex.PerPage,
		Timeout:        cfg.Sources.OpenAlex.Timeout,
		MaxAttempts:    cfg.Sources.MaxAttempts,
		InitialBackoff: cfg.Sources.InitialBackoff,
		BackoffFactor:  cfg.Sources.BackoffFactor,
	}, governor, recorder, logger)

	metadata := crossref.New(crossref.Config{
		BaseURL:        cfg.Sources.Crossref.BaseURL,
		Email:          cfg.Sources.Crossref.Email,
		Timeout:        cfg.Sources.Crossref.Timeout,
		MaxAttempts:    cfg.Sources.MaxAttempts,
		InitialBackoff: cfg.Sources.InitialBackoff,
		BackoffFactor:  cfg.Sources.BackoffFactor,
	}, governor, recorder, logger)

	enricher := pipeline.NewEnricher(metadata, rankings, cfg.Pipeline.EnrichConcurrency, logger)
	svc := pipeline.NewService(pipeline.Config{
		KeywordConcurrency: cfg.Pipeline.KeywordConcurrency,
		Pages:              cfg.Pipeline.Pages,
	}, discovery, enricher, metrics, logger)

	httpSrv := httpserver.NewServer(httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsPath:     cfg.Metrics.Path,
	}, svc, rankings, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().
		Str("http_address", cfg.Server.HTTPAddress()).
		Msg("research-discovery-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("research-discovery-service shutdown complete")
	return nil
}
