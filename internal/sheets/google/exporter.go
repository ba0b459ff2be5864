// Package google exports derived ledger and report views to a Google
// spreadsheet, using service account or OAuth user credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"dernek/internal/core"
	dlog "dernek/internal/log"
	"dernek/internal/stats"
)

// Config selects the spreadsheet and credentials. CredentialsJSON wins over
// CredentialsFile, which wins over OAuth; with none, application default
// credentials are used.
type Config struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
	OAuth           OAuthClient
	LedgerSheet     string
	SeriesSheet     string
}

// valuesWriter is the subset of the Sheets values API the exporter uses.
type valuesWriter interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
}

type Exporter struct {
	values        valuesWriter
	spreadsheetID string
	ledgerSheet   string
	seriesSheet   string
	logger        *dlog.Logger
}

// NewExporter creates a Sheets service and returns an exporter bound to
// cfg.SpreadsheetID.
func NewExporter(ctx context.Context, cfg Config, logger *dlog.Logger) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newExporter(sheetsValues{svc: svc}, cfg, logger), nil
}

func newExporter(values valuesWriter, cfg Config, logger *dlog.Logger) *Exporter {
	if logger == nil {
		logger = dlog.New(dlog.DefaultConfig())
	}
	if cfg.LedgerSheet == "" {
		cfg.LedgerSheet = "Yardım Defteri"
	}
	if cfg.SeriesSheet == "" {
		cfg.SeriesSheet = "Aylık Gelir-Gider"
	}
	return &Exporter{
		values:        values,
		spreadsheetID: cfg.SpreadsheetID,
		ledgerSheet:   cfg.LedgerSheet,
		seriesSheet:   cfg.SeriesSheet,
		logger:        logger.WithComponent(dlog.ComponentSheets),
	}
}

// newSheetsService initializes a Sheets service from the first configured
// credential.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}

	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		credentials, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		opts = append(opts, goption.WithCredentialsJSON(credentials))
	case cfg.OAuth.configured():
		ts, err := cfg.OAuth.TokenSource(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, goption.WithTokenSource(ts))
	}

	service, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportLedger replaces the ledger sheet with entries, newest first.
func (e *Exporter) ExportLedger(ctx context.Context, entries []core.LedgerEntry) error {
	return e.replace(ctx, e.ledgerSheet, LedgerRows(entries))
}

// ExportMonthlySeries replaces the series sheet with one row per month.
func (e *Exporter) ExportMonthlySeries(ctx context.Context, buckets []stats.MonthBucket) error {
	return e.replace(ctx, e.seriesSheet, SeriesRows(buckets))
}

func (e *Exporter) replace(ctx context.Context, sheet string, rows [][]any) error {
	if err := e.values.Clear(ctx, e.spreadsheetID, sheetRange(sheet, "A:Z")); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}
	if err := e.values.Update(ctx, e.spreadsheetID, sheetRange(sheet, "A1"), rows); err != nil {
		return fmt.Errorf("write sheet %s: %w", sheet, err)
	}
	e.logger.InfoContext(ctx, "Sheet exported",
		dlog.FieldOperation, dlog.OpExport,
		"sheet", sheet,
		dlog.FieldCount, len(rows)-1,
	)
	return nil
}

// sheetRange quotes the sheet name for A1 notation.
func sheetRange(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

type sheetsValues struct {
	svc *gsheet.Service
}

func (v sheetsValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := v.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (v sheetsValues) Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	_, err := v.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}
