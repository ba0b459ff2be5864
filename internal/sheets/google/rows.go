package google

import (
	"strings"

	"dernek/internal/core"
	"dernek/internal/stats"
)

var (
	ledgerHeader = []any{"Tarih", "Kişi", "Tür", "Açıklama", "Miktar", "Birim", "Tutar"}
	seriesHeader = []any{"Ay", "Gelir", "Gider", "Net"}
)

var kindLabels = map[core.LedgerKind]string{
	core.LedgerCash:   "Nakdi",
	core.LedgerInKind: "Ayni",
}

// LedgerRows returns the header followed by one row per entry.
func LedgerRows(entries []core.LedgerEntry) [][]any {
	rows := make([][]any, 0, len(entries)+1)
	rows = append(rows, ledgerHeader)
	for _, e := range entries {
		rows = append(rows, []any{
			e.Date.String(),
			cellText(e.PersonName),
			kindLabels[e.Kind],
			cellText(e.Description),
			e.Amount.InexactFloat64(),
			e.Unit,
			cellText(e.AmountDisplay),
		})
	}
	return rows
}

// SeriesRows returns the header followed by one income/expense row per
// month.
func SeriesRows(buckets []stats.MonthBucket) [][]any {
	rows := make([][]any, 0, len(buckets)+1)
	rows = append(rows, seriesHeader)
	for _, b := range buckets {
		income := b.Value(stats.SeriesIncome)
		expense := b.Value(stats.SeriesExpense)
		rows = append(rows, []any{
			b.Key,
			income.InexactFloat64(),
			expense.InexactFloat64(),
			income.Sub(expense).InexactFloat64(),
		})
	}
	return rows
}

// cellText keeps user-entered text from being read as a formula.
func cellText(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}
