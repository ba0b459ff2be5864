// Package worker runs the scheduled spreadsheet export.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"dernek/internal/core"
	"dernek/internal/filter"
	"dernek/internal/ledger"
	dlog "dernek/internal/log"
	"dernek/internal/services"
	"dernek/internal/stats"
)

// Exporter writes derived views to an external sheet.
type Exporter interface {
	ExportLedger(ctx context.Context, entries []core.LedgerEntry) error
	ExportMonthlySeries(ctx context.Context, buckets []stats.MonthBucket) error
}

// ExportWorker exports the full ledger and the income/expense series on a
// cron schedule, always from freshly fetched snapshots.
type ExportWorker struct {
	agg      *services.Aggregator
	exporter Exporter
	schedule string
	timeout  time.Duration
	logger   *dlog.Logger
}

func NewExportWorker(agg *services.Aggregator, exporter Exporter, schedule string, logger *dlog.Logger) *ExportWorker {
	if logger == nil {
		logger = dlog.New(dlog.DefaultConfig())
	}
	return &ExportWorker{
		agg:      agg,
		exporter: exporter,
		schedule: schedule,
		timeout:  2 * time.Minute,
		logger:   logger.WithComponent(dlog.ComponentWorker),
	}
}

// RunOnce performs one export. The ledger is written before the series;
// a failure stops the run.
func (w *ExportWorker) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()

	view, err := w.agg.Ledger(ctx, ledger.Filter{Kind: filter.All}, true)
	if err != nil {
		return fmt.Errorf("derive ledger: %w", err)
	}
	report, err := w.agg.Report(ctx, true)
	if err != nil {
		return fmt.Errorf("derive report: %w", err)
	}

	if err := w.exporter.ExportLedger(ctx, view.Entries); err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}
	if err := w.exporter.ExportMonthlySeries(ctx, report.IncomeExpense.Buckets); err != nil {
		return fmt.Errorf("export series: %w", err)
	}

	w.logger.InfoContext(ctx, "Export completed",
		dlog.FieldOperation, dlog.OpExport,
		"ledger_rows", len(view.Entries),
		"series_months", len(report.IncomeExpense.Buckets),
		dlog.FieldDuration, time.Since(start).Milliseconds(),
	)
	return nil
}

// Start schedules RunOnce and blocks until ctx is cancelled and any running
// export has finished. Overlapping runs are skipped.
func (w *ExportWorker) Start(ctx context.Context) error {
	logger := cronLogger{w.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if _, err := c.AddFunc(w.schedule, func() {
		if err := w.RunOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Export failed",
				dlog.NewFields().WithOperation(dlog.OpExport).WithError(err).ToSlice()...)
		}
	}); err != nil {
		return fmt.Errorf("invalid export schedule %q: %w", w.schedule, err)
	}

	c.Start()
	w.logger.Info("Export worker started", "schedule", w.schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.Info("Export worker stopped")
	return nil
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	logger *dlog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, dlog.FieldError, err)...)
}
