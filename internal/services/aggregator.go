// Package services orchestrates snapshot fetches and derives the screen
// views from them.
package services

import (
	"context"
	"time"

	"dernek/internal/cache"
	"dernek/internal/calendar"
	"dernek/internal/core"
	"dernek/internal/ledger"
	dlog "dernek/internal/log"
	"dernek/internal/source"
	"dernek/internal/stats"
)

// Options configures an Aggregator. Zero values select the defaults.
type Options struct {
	FetchTimeout time.Duration
	SnapshotTTL  time.Duration
	CacheSize    int
	Now          func() time.Time
	Logger       *dlog.Logger
}

const (
	defaultFetchTimeout = 7 * time.Second
	defaultSnapshotTTL  = 5 * time.Minute
	defaultCacheSize    = 32
)

// Aggregator serves the calendar, ledger, report and map views from cached
// snapshots of a source.Store.
type Aggregator struct {
	store        source.Store
	fetchTimeout time.Duration
	now          func() time.Time
	logger       *dlog.Logger

	calendar *SnapshotCache[CalendarSnapshot]
	ledger   *SnapshotCache[LedgerSnapshot]
	report   *SnapshotCache[ReportSnapshot]
	people   *SnapshotCache[[]core.Person]
}

func NewAggregator(store source.Store, opts Options) *Aggregator {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = dlog.New(dlog.DefaultConfig())
	}

	return &Aggregator{
		store:        store,
		fetchTimeout: opts.FetchTimeout,
		now:          opts.Now,
		logger:       opts.Logger.WithComponent(dlog.ComponentAggregator),
		calendar:     NewSnapshotCache[CalendarSnapshot](opts.CacheSize, opts.SnapshotTTL),
		ledger:       NewSnapshotCache[LedgerSnapshot](opts.CacheSize, opts.SnapshotTTL),
		report:       NewSnapshotCache[ReportSnapshot](opts.CacheSize, opts.SnapshotTTL),
		people:       NewSnapshotCache[[]core.Person](opts.CacheSize, opts.SnapshotTTL),
	}
}

// Today is the aggregator's notion of the current time.
func (a *Aggregator) Today() time.Time {
	return a.now()
}

// Calendar returns the grid of month.
func (a *Aggregator) Calendar(ctx context.Context, month calendar.Month, refresh bool) (calendar.Grid, error) {
	snap, err := load(ctx, a, ScreenCalendar, a.calendar, refresh, FetchCalendar)
	if err != nil {
		return calendar.Grid{}, err
	}
	events := CalendarEvents(snap)
	if dropped := droppedCalendarSources(snap, len(events)); dropped > 0 {
		a.logger.DebugContext(ctx, "Calendar sources dropped",
			dlog.FieldScreen, ScreenCalendar,
			dlog.FieldDropped, dropped,
		)
	}
	return calendar.Project(month, events, a.now()), nil
}

// MonthEvents returns the events of month in day order.
func (a *Aggregator) MonthEvents(ctx context.Context, month calendar.Month, refresh bool) ([]core.CalendarEvent, error) {
	snap, err := load(ctx, a, ScreenCalendar, a.calendar, refresh, FetchCalendar)
	if err != nil {
		return nil, err
	}
	return MonthEvents(snap, month), nil
}

// Ledger returns the merged ledger filtered by f.
func (a *Aggregator) Ledger(ctx context.Context, f ledger.Filter, refresh bool) (LedgerView, error) {
	snap, err := load(ctx, a, ScreenLedger, a.ledger, refresh, FetchLedger)
	if err != nil {
		return LedgerView{}, err
	}
	view := DeriveLedger(snap, f)
	if dropped := len(snap.Payments) + len(snap.InKind) - view.Total; dropped > 0 {
		a.logger.DebugContext(ctx, "Ledger sources dropped",
			dlog.FieldScreen, ScreenLedger,
			dlog.FieldDropped, dropped,
		)
	}
	return view, nil
}

// Report returns every report series.
func (a *Aggregator) Report(ctx context.Context, refresh bool) (stats.Report, error) {
	snap, err := load(ctx, a, ScreenReport, a.report, refresh, FetchReport)
	if err != nil {
		return stats.Report{}, err
	}
	return DeriveReport(snap), nil
}

// Map returns the locatable people.
func (a *Aggregator) Map(ctx context.Context, refresh bool) ([]core.MapPoint, error) {
	people, err := load(ctx, a, ScreenMap, a.people, refresh, FetchMap)
	if err != nil {
		return nil, err
	}
	return DeriveMap(people), nil
}

// Invalidate drops the snapshot of screen. Fetches already in flight for it
// will not be cached.
func (a *Aggregator) Invalidate(screen string) {
	var gen uint64
	switch screen {
	case ScreenCalendar:
		gen = a.calendar.Invalidate(screen)
	case ScreenLedger:
		gen = a.ledger.Invalidate(screen)
	case ScreenReport:
		gen = a.report.Invalidate(screen)
	case ScreenMap:
		gen = a.people.Invalidate(screen)
	default:
		return
	}
	a.logger.Debug("Snapshot invalidated", dlog.NewFields().WithSnapshot(screen, gen).ToSlice()...)
}

// InvalidateCollection drops every snapshot that includes collection and
// returns the affected screens.
func (a *Aggregator) InvalidateCollection(collection string) []string {
	screens := ScreenForCollection(collection)
	for _, s := range screens {
		a.Invalidate(s)
	}
	return screens
}

// Cleaners returns the snapshot caches for periodic expiry.
func (a *Aggregator) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{
		a.calendar.Cleaner(),
		a.ledger.Cleaner(),
		a.report.Cleaner(),
		a.people.Cleaner(),
	}
}

func load[T any](ctx context.Context, a *Aggregator, screen string, c *SnapshotCache[T], refresh bool, fetch func(context.Context, source.Store) (T, error)) (T, error) {
	if refresh {
		a.Invalidate(screen)
	}

	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	start := time.Now()
	v, gen, hit, err := c.Load(ctx, screen, func(ctx context.Context) (T, error) {
		return fetch(ctx, a.store)
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "Snapshot fetch failed",
			dlog.NewFields().
				WithSnapshot(screen, gen).
				WithOperation(dlog.OpFetch).
				WithError(err).
				ToSlice()...,
		)
		return v, err
	}
	if !hit {
		a.logger.DebugContext(ctx, "Snapshot fetched",
			dlog.FieldScreen, screen,
			dlog.FieldGeneration, gen,
			dlog.FieldDuration, time.Since(start).Milliseconds(),
		)
	}
	return v, nil
}
