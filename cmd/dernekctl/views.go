package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"dernek/internal/calendar"
	"dernek/internal/core"
	"dernek/internal/filter"
	"dernek/internal/ledger"
	"dernek/internal/services"
	"dernek/internal/stats"
)

var calendarFlags struct {
	year  int
	month int
}

var ledgerFlags struct {
	kind   string
	search string
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the events of one month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		now := time.Now()
		year, month := calendarFlags.year, calendarFlags.month
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = int(now.Month())
		}
		if month < 1 || month > 12 {
			return fmt.Errorf("invalid month %d", month)
		}

		agg, closeFn, err := newAggregator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		grid, err := agg.Calendar(cmd.Context(), calendar.NewMonth(year, time.Month(month)), true)
		if err != nil {
			return err
		}
		if app.json {
			return writeJSON(cmd.OutOrStdout(), grid)
		}
		return printEvents(cmd.OutOrStdout(), grid.Events())
	},
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Print the merged aid ledger and its totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		kind := strings.TrimSpace(ledgerFlags.kind)
		if kind != filter.All && !core.LedgerKind(kind).Valid() {
			return fmt.Errorf("invalid kind %q: must be %s, %s or %s", kind, filter.All, core.LedgerCash, core.LedgerInKind)
		}

		agg, closeFn, err := newAggregator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		view, err := agg.Ledger(cmd.Context(), ledger.Filter{Kind: kind, Search: ledgerFlags.search}, true)
		if err != nil {
			return err
		}
		if app.json {
			return writeJSON(cmd.OutOrStdout(), view)
		}
		return printLedger(cmd.OutOrStdout(), view)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the statistics report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		agg, closeFn, err := newAggregator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		report, err := agg.Report(cmd.Context(), true)
		if err != nil {
			return err
		}
		if app.json {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		return printReport(cmd.OutOrStdout(), report)
	},
}

func init() {
	calendarCmd.Flags().IntVar(&calendarFlags.year, "year", 0, "year, defaults to the current one")
	calendarCmd.Flags().IntVar(&calendarFlags.month, "month", 0, "month 1-12, defaults to the current one")
	ledgerCmd.Flags().StringVar(&ledgerFlags.kind, "kind", filter.All, "all, cash or inkind")
	ledgerCmd.Flags().StringVar(&ledgerFlags.search, "search", "", "case-insensitive text in person name or description")
}

func newAggregator(cmd *cobra.Command) (*services.Aggregator, func(), error) {
	result, err := openBackend(cmd.Context(), false)
	if err != nil {
		return nil, nil, err
	}
	agg := services.NewAggregator(result.Store, services.Options{
		FetchTimeout: app.cfg.FetchTimeout,
		SnapshotTTL:  app.cfg.SnapshotTTL,
		CacheSize:    app.cfg.CacheSize,
		Logger:       app.logger,
	})
	return agg, func() { result.Close() }, nil
}

func printEvents(w io.Writer, events []core.CalendarEvent) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tTITLE\tDETAILS")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Date, e.Type, e.Title, e.Details)
	}
	return tw.Flush()
}

func printLedger(w io.Writer, view services.LedgerView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tKIND\tPERSON\tDESCRIPTION\tAMOUNT")
	for _, e := range view.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Date, e.Kind, e.PersonName, e.Description, e.AmountDisplay)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "%d of %d entries\n", len(view.Entries), view.Total)
	for _, currency := range slices.Sorted(maps.Keys(view.Totals.CashDisplay)) {
		fmt.Fprintf(tw, "cash\t%s\n", view.Totals.CashDisplay[currency])
	}
	for _, q := range view.Totals.InKind {
		fmt.Fprintf(tw, "in-kind\t%s\t%s\n", q.Description, q.Display)
	}
	return tw.Flush()
}

func printReport(w io.Writer, r stats.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	sections := []struct {
		title   string
		buckets []stats.Bucket
		sum     bool
	}{
		{"Cases by status", r.CasesByStatus, false},
		{"Projects by status", r.ProjectsByStatus, false},
		{"People by nationality", r.PeopleByNationality, false},
		{"Reach by audience", r.ReachByAudience, true},
		{"Messages by channel", r.MessagesByChannel, false},
		{"In-kind by product", r.InKindByProduct, true},
	}
	for _, s := range sections {
		fmt.Fprintf(tw, "%s\n", s.title)
		for _, b := range s.buckets {
			if s.sum {
				fmt.Fprintf(tw, "  %s\t%s\n", b.Key, b.Sum.String())
			} else {
				fmt.Fprintf(tw, "  %s\t%d\n", b.Key, b.Count)
			}
		}
	}

	fmt.Fprintln(tw, "Income and expense")
	for _, b := range r.IncomeExpense.Buckets {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", b.Key,
			b.Value(stats.SeriesIncome).StringFixed(2),
			b.Value(stats.SeriesExpense).StringFixed(2))
	}
	if r.IncomeExpense.Skipped > 0 {
		fmt.Fprintf(tw, "  skipped\t%d\n", r.IncomeExpense.Skipped)
	}

	fmt.Fprintf(tw, "Aid recipients\t%d\n", r.AidRecipients)
	fmt.Fprintf(tw, "Total reach\t%d\n", r.TotalReach)
	return tw.Flush()
}
