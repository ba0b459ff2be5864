package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"dernek/internal/amqp"
	"dernek/internal/backend"
	"dernek/internal/cache"
	"dernek/internal/cli"
	apphttp "dernek/internal/http"
	dlog "dernek/internal/log"
	"dernek/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(dlog.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.MustLoadConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", dlog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", dlog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	agg := services.NewAggregator(result.Store, services.Options{
		FetchTimeout: cfg.FetchTimeout,
		SnapshotTTL:  cfg.SnapshotTTL,
		CacheSize:    cfg.CacheSize,
		Logger:       logger,
	})

	srv := apphttp.NewServer(":"+cfg.Port, agg, apphttp.Options{
		Logger:           logger,
		Ready:            result.Ping,
		RefreshPerMinute: cfg.RefreshPerMinute,
		BaseURL:          cfg.PublicBaseURL,
		CalendarName:     cfg.CalendarName,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", dlog.FieldError, err)
		}
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup error", dlog.FieldError, err)
		}
	})

	caches := cache.NewManager(logger.Logger)
	for _, c := range agg.Cleaners() {
		caches.Register(c)
	}
	caches.Start(ctx, cfg.SnapshotTTL)

	if result.Notifier != nil {
		go consumeChanges(ctx, result.Notifier, agg, logger)
	}

	logger.Info("Starting dernek server",
		dlog.FieldOperation, dlog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"notifications", result.Notifier != nil,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", dlog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	caches.Wait()
	logger.Info("Server stopped gracefully")
}

// consumeChanges drops cached snapshots of every screen a changed collection
// feeds, until ctx is cancelled.
func consumeChanges(ctx context.Context, client *amqp.Client, agg *services.Aggregator, logger *dlog.Logger) {
	err := client.ConsumeRecordChanged(ctx, func(ctx context.Context, msg *amqp.RecordChangedMessage) error {
		screens := agg.InvalidateCollection(msg.Collection)
		logger.DebugContext(ctx, "Snapshots invalidated",
			dlog.FieldOperation, dlog.OpConsume,
			dlog.FieldCollection, msg.Collection,
			"screens", screens,
		)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Change notification consumer stopped", dlog.FieldError, err)
	}
}
