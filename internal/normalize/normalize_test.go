package normalize

import (
	"testing"

	"github.com/shopspring/decimal"

	"dernek/internal/core"
)

func TestCalendarEventIDsAndTypes(t *testing.T) {
	sources := CalendarSources(
		[]core.Event{{ID: "e1", Title: "Kermes", Date: "2024-05-25", Time: "14:00", Location: "Merkez"}},
		[]core.Project{{ID: "p1", Title: "Okul", Tasks: []core.Task{
			{ID: "t1", Title: "Kırtasiye", DueDate: "2024-05-25"},
			{ID: "t2", Title: "Tarihsiz"},
		}}},
		[]core.Case{{ID: "c1", Title: "Velayet", Court: "Aile Mahkemesi", Hearings: []core.Hearing{
			{ID: "h1", Date: "2024-05-26", Time: "10:30"},
		}}},
	)
	if len(sources) != 4 {
		t.Fatalf("expected 4 sources, got %d", len(sources))
	}

	events := CalendarEvents(sources)
	want := []struct {
		id      string
		typ     core.CalendarType
		link    string
		details string
	}{
		{"event-e1", core.CalendarTypeEvent, "/events/e1", "14:00 · Merkez"},
		{"task-p1-t1", core.CalendarTypeTask, "/projects/p1", "Proje: Okul"},
		{"hearing-c1-h1", core.CalendarTypeHearing, "/cases/c1", "10:30 · Aile Mahkemesi"},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, w := range want {
		ev := events[i]
		if ev.ID != w.id || ev.Type != w.typ || ev.Link != w.link || ev.Details != w.details {
			t.Errorf("event %d = %+v, want %+v", i, ev, w)
		}
	}
}

func TestCaseWithHearingsYieldsOneEventEach(t *testing.T) {
	c := core.Case{ID: "c9", Title: "Dava", Hearings: []core.Hearing{
		{ID: "a", Date: "2024-01-02"},
		{ID: "b", Date: "2024-02-03"},
		{ID: "c", Date: "2024-03-04"},
	}}
	events := CalendarEvents(CalendarSources(nil, nil, []core.Case{c}))
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	seen := map[string]bool{}
	for _, ev := range events {
		if seen[ev.ID] {
			t.Fatalf("duplicate id %s", ev.ID)
		}
		seen[ev.ID] = true
	}
}

func TestLedgerEntryCash(t *testing.T) {
	pay := core.CashPayment{ID: "1", PersonName: "Ayşe", Purpose: core.PurposeAid, Amount: decimal.NewFromInt(500), Currency: "TRY", Date: "2024-06-01"}
	e, ok := LedgerEntry(CashSource{Payment: pay}, nil, nil)
	if !ok {
		t.Fatalf("expected entry")
	}
	if e.ID != "cash-1" || e.Kind != core.LedgerCash || e.AmountDisplay != "₺500,00" || e.Description != "Yardım Ödemesi" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if !e.Amount.Equal(decimal.NewFromInt(500)) || e.Unit != "TRY" {
		t.Fatalf("typed amount lost: %+v", e)
	}

	pay.Purpose = core.PurposeSalary
	if _, ok := LedgerEntry(CashSource{Payment: pay}, nil, nil); ok {
		t.Fatalf("salary payment must not reach the ledger")
	}
}

func TestLedgerEntryInKindUnknownReferences(t *testing.T) {
	people := PersonNames([]core.Person{{ID: "p1", Name: "Mehmet"}})
	products := ProductNames([]core.Product{{ID: "rice", Name: "Pirinç"}})

	tx := core.InKindTransaction{ID: "9", PersonID: "ghost", ProductID: "rice", Quantity: decimal.NewFromInt(10), Unit: "kg", Date: "2024-06-02"}
	e, ok := LedgerEntry(InKindSource{Transaction: tx}, people, products)
	if !ok {
		t.Fatalf("dangling person reference must not drop the entry")
	}
	if e.PersonName != "Bilinmeyen Kişi" {
		t.Fatalf("person name = %q", e.PersonName)
	}
	if e.Description != "Pirinç" || e.AmountDisplay != "10 kg" || e.ID != "inkind-9" {
		t.Fatalf("unexpected entry %+v", e)
	}

	tx.ProductID = "missing"
	e, _ = LedgerEntry(InKindSource{Transaction: tx}, people, products)
	if e.Description != UnknownProduct {
		t.Fatalf("description = %q", e.Description)
	}
}

func TestLedgerEntryMissingDate(t *testing.T) {
	tx := core.InKindTransaction{ID: "9", Quantity: decimal.NewFromInt(1)}
	if _, ok := LedgerEntry(InKindSource{Transaction: tx}, nil, nil); ok {
		t.Fatalf("undated transaction should be dropped")
	}
}

func TestMapPoints(t *testing.T) {
	lat, lng := 41.01, 28.97
	people := []core.Person{
		{ID: "a", Name: "A", Latitude: &lat, Longitude: &lng},
		{ID: "b", Name: "B", Latitude: &lat},
		{ID: "c", Name: "C"},
	}
	points := MapPoints(people)
	if len(points) != 1 || points[0].ID != "a" || points[0].Latitude != lat {
		t.Fatalf("unexpected points %+v", points)
	}
}

func TestLookupResolve(t *testing.T) {
	l := Lookup{"1": "Ali", "2": "  "}
	if l.Resolve("1", "x") != "Ali" {
		t.Fatalf("expected Ali")
	}
	if l.Resolve("2", "x") != "x" || l.Resolve("3", "x") != "x" {
		t.Fatalf("expected fallback")
	}
	var nilLookup Lookup
	if nilLookup.Resolve("1", "x") != "x" {
		t.Fatalf("nil lookup should fall back")
	}
}

type bogusSource struct{ CalendarSource }

func TestUnknownSourcePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown source")
		}
	}()
	CalendarEvent(bogusSource{})
}
