package main

import (
	"context"
	"os"
	"time"

	"dernek/internal/backend"
	"dernek/internal/cli"
	dlog "dernek/internal/log"
	"dernek/internal/services"
	gsheet "dernek/internal/sheets/google"
	"dernek/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(dlog.ComponentWorker, os.Getenv("LOG_LEVEL"))
	logger.Info("Starting dernek-worker", dlog.FieldOperation, dlog.OpStartup)

	cfg := cli.MustLoadConfig(logger)
	if !cfg.ExportEnabled() {
		logger.Error("Sheets export disabled - set GOOGLE_SPREADSHEET_ID to run the worker")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", dlog.FieldError, err)
		os.Exit(1)
	}
	// The worker always reads fresh snapshots, so it has no use for change
	// notifications.
	backendCfg.AMQPURL = ""

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", dlog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	exporter, err := gsheet.NewExporter(context.Background(), gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		OAuth: gsheet.OAuthClient{
			ClientJSON: cfg.GoogleOAuthClientJSON,
			ClientFile: cfg.GoogleOAuthClientFile,
			TokenFile:  cfg.GoogleOAuthTokenFile,
		},
		LedgerSheet:     cfg.GoogleLedgerSheet,
		SeriesSheet:     cfg.GoogleSeriesSheet,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", dlog.FieldError, err)
		result.Close()
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	agg := services.NewAggregator(result.Store, services.Options{
		FetchTimeout: cfg.FetchTimeout,
		SnapshotTTL:  cfg.SnapshotTTL,
		CacheSize:    cfg.CacheSize,
		Logger:       logger,
	})
	w := worker.NewExportWorker(agg, exporter, cfg.ExportSchedule, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Catch up on startup instead of waiting for the first scheduled run.
	if err := w.RunOnce(ctx); err != nil {
		logger.Error("Startup export failed", dlog.FieldError, err)
	}

	// Start returns once ctx is cancelled and a running export has finished.
	if err := w.Start(ctx); err != nil {
		logger.Error("Export worker failed", dlog.FieldError, err)
		result.Close()
		os.Exit(1)
	}

	<-done
	if err := result.Close(); err != nil {
		logger.Error("Backend cleanup error", dlog.FieldError, err)
	}
	logger.Info("Worker stopped gracefully")
}
