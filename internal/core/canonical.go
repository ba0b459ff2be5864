package core

import "github.com/shopspring/decimal"

const (
	CalendarTypeEvent   CalendarType = "Event"
	CalendarTypeTask    CalendarType = "Task"
	CalendarTypeHearing CalendarType = "Hearing"
)

const (
	LedgerCash   LedgerKind = "cash"
	LedgerInKind LedgerKind = "inkind"
)

type (
	CalendarType string

	LedgerKind string

	// CalendarEvent is the source-agnostic calendar item. Time-of-day, when
	// known, is part of Details.
	CalendarEvent struct {
		ID      string       `json:"id"`
		Title   string       `json:"title"`
		Date    Date         `json:"date"`
		Type    CalendarType `json:"type"`
		Link    string       `json:"link"`
		Details string       `json:"details"`
	}

	// LedgerEntry is one row of the merged aid ledger.
	// AmountDisplay is for rendering only; Amount and Unit carry the typed
	// value (currency code for cash, measurement unit for in-kind).
	LedgerEntry struct {
		ID            string          `json:"id"`
		PersonName    string          `json:"personName"`
		Kind          LedgerKind      `json:"kind"`
		Description   string          `json:"description"`
		AmountDisplay string          `json:"amountDisplay"`
		Date          Date            `json:"date"`
		Amount        decimal.Decimal `json:"amount"`
		Unit          string          `json:"unit"`
	}

	// MapPoint places a person on the map view.
	MapPoint struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Nationality string  `json:"nationality"`
		Latitude    float64 `json:"lat"`
		Longitude   float64 `json:"lng"`
	}
)

// Valid reports whether k is one of the known ledger kinds.
func (k LedgerKind) Valid() bool {
	return k == LedgerCash || k == LedgerInKind
}
