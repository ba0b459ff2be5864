package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dernek/internal/core"
	"dernek/internal/source"
	"dernek/internal/stats"
)

// CalendarSnapshot holds every collection the calendar screen reads.
type CalendarSnapshot struct {
	Events   []core.Event
	Projects []core.Project
	Cases    []core.Case
}

// LedgerSnapshot holds every collection the aid ledger reads.
type LedgerSnapshot struct {
	Payments []core.CashPayment
	InKind   []core.InKindTransaction
	People   []core.Person
	Products []core.Product
}

// ReportSnapshot holds every collection the reports screen reads.
type ReportSnapshot = stats.Input

// fetchInto runs fetch and stores its result in dst. The collection name
// prefixes the error.
func fetchInto[T any](ctx context.Context, collection string, dst *[]T, fetch func(context.Context) ([]T, error)) func() error {
	return func() error {
		items, err := fetch(ctx)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", collection, err)
		}
		*dst = items
		return nil
	}
}

// FetchCalendar fetches the calendar collections concurrently. Any failure
// fails the whole snapshot.
func FetchCalendar(ctx context.Context, store source.Store) (CalendarSnapshot, error) {
	var snap CalendarSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetchInto(gctx, source.CollectionEvents, &snap.Events, store.FetchEvents))
	g.Go(fetchInto(gctx, source.CollectionProjects, &snap.Projects, store.FetchProjects))
	g.Go(fetchInto(gctx, source.CollectionCases, &snap.Cases, store.FetchCases))
	if err := g.Wait(); err != nil {
		return CalendarSnapshot{}, err
	}
	return snap, nil
}

// FetchLedger fetches payments, in-kind transactions and both lookup tables.
func FetchLedger(ctx context.Context, store source.Store) (LedgerSnapshot, error) {
	var snap LedgerSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetchInto(gctx, source.CollectionPayments, &snap.Payments, store.FetchCashPayments))
	g.Go(fetchInto(gctx, source.CollectionInKind, &snap.InKind, store.FetchInKindTransactions))
	g.Go(fetchInto(gctx, source.CollectionPeople, &snap.People, store.FetchPeople))
	g.Go(fetchInto(gctx, source.CollectionProducts, &snap.Products, store.FetchProducts))
	if err := g.Wait(); err != nil {
		return LedgerSnapshot{}, err
	}
	return snap, nil
}

// FetchReport fetches the seven collections the reports screen reads.
func FetchReport(ctx context.Context, store source.Store) (ReportSnapshot, error) {
	var snap ReportSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetchInto(gctx, source.CollectionPeople, &snap.People, store.FetchPeople))
	g.Go(fetchInto(gctx, source.CollectionProjects, &snap.Projects, store.FetchProjects))
	g.Go(fetchInto(gctx, source.CollectionCases, &snap.Cases, store.FetchCases))
	g.Go(fetchInto(gctx, source.CollectionRecords, &snap.Records, store.FetchFinancialRecords))
	g.Go(fetchInto(gctx, source.CollectionMessages, &snap.Messages, store.FetchMessages))
	g.Go(fetchInto(gctx, source.CollectionInKind, &snap.InKind, store.FetchInKindTransactions))
	g.Go(fetchInto(gctx, source.CollectionProducts, &snap.Products, store.FetchProducts))
	if err := g.Wait(); err != nil {
		return ReportSnapshot{}, err
	}
	return snap, nil
}

// FetchMap fetches the people shown on the map.
func FetchMap(ctx context.Context, store source.Store) ([]core.Person, error) {
	people, err := store.FetchPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source.CollectionPeople, err)
	}
	return people, nil
}
