// Package ledger merges cash and in-kind aid into one chronological ledger.
package ledger

import (
	"sort"

	"dernek/internal/core"
	"dernek/internal/filter"
	"dernek/internal/normalize"
)

// Merge normalizes both kinds and returns them sorted by date, newest first.
// Entries with equal dates keep concatenation order, so cash comes before
// in-kind on the same day.
func Merge(cash []core.CashPayment, inKind []core.InKindTransaction, people, products normalize.Lookup) []core.LedgerEntry {
	entries := make([]core.LedgerEntry, 0, len(cash)+len(inKind))
	for _, p := range cash {
		if e, ok := normalize.LedgerEntry(normalize.CashSource{Payment: p}, people, products); ok {
			entries = append(entries, e)
		}
	}
	for _, t := range inKind {
		if e, ok := normalize.LedgerEntry(normalize.InKindSource{Transaction: t}, people, products); ok {
			entries = append(entries, e)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date.Time)
	})
	return entries
}

// Filter is the ledger screen's filter state.
type Filter struct {
	Kind   string `json:"kind"`
	Search string `json:"search"`
}

// Predicate returns the AND of the kind and search dimensions.
func (f Filter) Predicate() filter.Predicate[core.LedgerEntry] {
	return filter.And(
		filter.Equals(f.Kind, func(e core.LedgerEntry) string { return string(e.Kind) }),
		filter.Contains(f.Search,
			func(e core.LedgerEntry) string { return e.PersonName },
			func(e core.LedgerEntry) string { return e.Description },
		),
	)
}

// Apply returns the entries matching f as a new slice.
func Apply(entries []core.LedgerEntry, f Filter) []core.LedgerEntry {
	return filter.Apply(entries, f.Predicate())
}
