package services

import (
	"time"

	"dernek/internal/calendar"
	"dernek/internal/core"
	"dernek/internal/ledger"
	"dernek/internal/normalize"
	"dernek/internal/stats"
)

// LedgerView is the filtered ledger with totals over the filtered rows.
type LedgerView struct {
	Entries []core.LedgerEntry `json:"entries"`
	Totals  ledger.Totals      `json:"totals"`
	Filter  ledger.Filter      `json:"filter"`
	Total   int                `json:"total"`
}

// CalendarEvents normalizes every dated source record of the snapshot.
func CalendarEvents(snap CalendarSnapshot) []core.CalendarEvent {
	return normalize.CalendarEvents(normalize.CalendarSources(snap.Events, snap.Projects, snap.Cases))
}

// DeriveCalendar projects the snapshot onto the grid of month.
func DeriveCalendar(snap CalendarSnapshot, month calendar.Month, today time.Time) calendar.Grid {
	return calendar.Project(month, CalendarEvents(snap), today)
}

// MonthEvents returns the events of month in grid order.
func MonthEvents(snap CalendarSnapshot, month calendar.Month) []core.CalendarEvent {
	return calendar.Project(month, CalendarEvents(snap), time.Time{}).Events()
}

// DeriveLedger merges the snapshot and applies f. Total counts the merged
// rows before filtering.
func DeriveLedger(snap LedgerSnapshot, f ledger.Filter) LedgerView {
	all := ledger.Merge(snap.Payments, snap.InKind,
		normalize.PersonNames(snap.People), normalize.ProductNames(snap.Products))
	entries := ledger.Apply(all, f)
	return LedgerView{
		Entries: entries,
		Totals:  ledger.ComputeTotals(entries),
		Filter:  f,
		Total:   len(all),
	}
}

func DeriveReport(snap ReportSnapshot) stats.Report {
	return stats.BuildReport(snap)
}

func DeriveMap(people []core.Person) []core.MapPoint {
	return normalize.MapPoints(people)
}

// droppedCalendarSources reports how many dated sources were dropped
// during normalization.
func droppedCalendarSources(snap CalendarSnapshot, kept int) int {
	return len(normalize.CalendarSources(snap.Events, snap.Projects, snap.Cases)) - kept
}
