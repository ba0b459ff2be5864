package worker

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"dernek/internal/core"
	dlog "dernek/internal/log"
	"dernek/internal/services"
	"dernek/internal/source"
	"dernek/internal/source/memory"
	"dernek/internal/stats"
)

type fakeExporter struct {
	entries   []core.LedgerEntry
	buckets   []stats.MonthBucket
	ledgerErr error
	calls     int
}

func (f *fakeExporter) ExportLedger(ctx context.Context, entries []core.LedgerEntry) error {
	f.calls++
	if f.ledgerErr != nil {
		return f.ledgerErr
	}
	f.entries = entries
	return nil
}

func (f *fakeExporter) ExportMonthlySeries(ctx context.Context, buckets []stats.MonthBucket) error {
	f.calls++
	f.buckets = buckets
	return nil
}

func newTestWorker(store source.Store, exporter Exporter, schedule string) *ExportWorker {
	logger := dlog.New(dlog.Config{Output: &bytes.Buffer{}})
	agg := services.NewAggregator(store, services.Options{Logger: logger})
	return NewExportWorker(agg, exporter, schedule, logger)
}

func testStore() *memory.Store {
	return memory.NewFromDataset(source.Dataset{
		Payments: []core.CashPayment{
			{ID: "p1", PersonName: "Ayşe", Purpose: core.PurposeScholarship, Amount: decimal.NewFromInt(300), Currency: "TRY", Date: "2024-02-01"},
			{ID: "p2", PersonName: "Kira", Purpose: core.PurposeRent, Amount: decimal.NewFromInt(900), Currency: "TRY", Date: "2024-02-03"},
		},
		Records: []core.FinancialRecord{
			{ID: "r1", Date: "2024-01-05", Direction: core.DirectionIncome, Amount: decimal.NewFromInt(100)},
			{ID: "r2", Date: "2024-02-05", Direction: core.DirectionExpense, Amount: decimal.NewFromInt(40)},
		},
	})
}

func TestRunOnceExportsLedgerAndSeries(t *testing.T) {
	exporter := &fakeExporter{}
	w := newTestWorker(testStore(), exporter, "@daily")

	require.NoError(t, w.RunOnce(context.Background()))
	require.Len(t, exporter.entries, 1, "rent is not an aid payment")
	require.Equal(t, "Ayşe", exporter.entries[0].PersonName)
	require.Len(t, exporter.buckets, 2)
	require.Equal(t, "2024-01", exporter.buckets[0].Key)
}

func TestRunOnceStopsOnLedgerFailure(t *testing.T) {
	exporter := &fakeExporter{ledgerErr: errors.New("quota")}
	w := newTestWorker(testStore(), exporter, "@daily")

	err := w.RunOnce(context.Background())
	require.ErrorIs(t, err, exporter.ledgerErr)
	require.Equal(t, 1, exporter.calls, "series must not be exported after a ledger failure")
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	w := newTestWorker(testStore(), &fakeExporter{}, "every tuesday")
	require.Error(t, w.Start(context.Background()))
}

func TestStartStopsOnCancel(t *testing.T) {
	w := newTestWorker(testStore(), &fakeExporter{}, "0 6 * * *")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
