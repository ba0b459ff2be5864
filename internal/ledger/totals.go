package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"dernek/internal/core"
)

// Quantity is an in-kind total for one product and unit.
type Quantity struct {
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Display     string          `json:"display"`
}

// Totals summarizes a ledger from the typed amounts.
type Totals struct {
	Cash        map[string]decimal.Decimal `json:"cash"`
	CashDisplay map[string]string          `json:"cashDisplay"`
	InKind      []Quantity                 `json:"inKind"`
	Counts      map[core.LedgerKind]int    `json:"counts"`
}

// ComputeTotals sums cash per currency and in-kind quantities per
// description and unit. In-kind rows are ordered by description then unit.
func ComputeTotals(entries []core.LedgerEntry) Totals {
	t := Totals{
		Cash:        make(map[string]decimal.Decimal),
		CashDisplay: make(map[string]string),
		Counts:      map[core.LedgerKind]int{core.LedgerCash: 0, core.LedgerInKind: 0},
	}

	type key struct{ desc, unit string }
	quantities := make(map[key]decimal.Decimal)
	for _, e := range entries {
		t.Counts[e.Kind]++
		switch e.Kind {
		case core.LedgerCash:
			t.Cash[e.Unit] = t.Cash[e.Unit].Add(e.Amount)
		case core.LedgerInKind:
			k := key{e.Description, e.Unit}
			quantities[k] = quantities[k].Add(e.Amount)
		}
	}

	for currency, amount := range t.Cash {
		t.CashDisplay[currency] = core.FormatMoney(amount, currency)
	}

	t.InKind = make([]Quantity, 0, len(quantities))
	for k, q := range quantities {
		display := core.FormatQuantity(q)
		if k.unit != "" {
			display += " " + k.unit
		}
		t.InKind = append(t.InKind, Quantity{Description: k.desc, Unit: k.unit, Quantity: q, Display: display})
	}
	sort.Slice(t.InKind, func(i, j int) bool {
		if t.InKind[i].Description != t.InKind[j].Description {
			return t.InKind[i].Description < t.InKind[j].Description
		}
		return t.InKind[i].Unit < t.InKind[j].Unit
	})
	return t
}
