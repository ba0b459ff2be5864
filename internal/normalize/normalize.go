// Package normalize maps raw stored records onto the canonical view models.
//
// Every mapping returns ok=false when a field the target view needs is
// missing; callers drop such records from that view only. Foreign keys are
// resolved through a Lookup built once per pass.
package normalize

import (
	"fmt"
	"strings"

	"dernek/internal/core"
)

// CalendarEvent maps a dated source record. ok is false when the record has
// no usable date.
func CalendarEvent(src CalendarSource) (core.CalendarEvent, bool) {
	switch s := src.(type) {
	case EventSource:
		d, ok := core.ParseDate(s.Event.Date)
		if !ok {
			return core.CalendarEvent{}, false
		}
		return core.CalendarEvent{
			ID:      "event-" + s.Event.ID,
			Title:   s.Event.Title,
			Date:    d,
			Type:    core.CalendarTypeEvent,
			Link:    "/events/" + s.Event.ID,
			Details: joinDetails(s.Event.Time, s.Event.Location),
		}, true
	case TaskSource:
		d, ok := core.ParseDate(s.Task.DueDate)
		if !ok {
			return core.CalendarEvent{}, false
		}
		return core.CalendarEvent{
			ID:      "task-" + s.Project.ID + "-" + s.Task.ID,
			Title:   s.Task.Title,
			Date:    d,
			Type:    core.CalendarTypeTask,
			Link:    "/projects/" + s.Project.ID,
			Details: "Proje: " + s.Project.Title,
		}, true
	case HearingSource:
		d, ok := core.ParseDate(s.Hearing.Date)
		if !ok {
			return core.CalendarEvent{}, false
		}
		return core.CalendarEvent{
			ID:      "hearing-" + s.Case.ID + "-" + s.Hearing.ID,
			Title:   "Duruşma: " + s.Case.Title,
			Date:    d,
			Type:    core.CalendarTypeHearing,
			Link:    "/cases/" + s.Case.ID,
			Details: joinDetails(s.Hearing.Time, s.Case.Court),
		}, true
	default:
		panic(fmt.Sprintf("normalize: unhandled calendar source %T", src))
	}
}

// CalendarEvents maps all sources, dropping the undated ones. Order follows
// the sources.
func CalendarEvents(sources []CalendarSource) []core.CalendarEvent {
	out := make([]core.CalendarEvent, 0, len(sources))
	for _, src := range sources {
		if ev, ok := CalendarEvent(src); ok {
			out = append(out, ev)
		}
	}
	return out
}

// LedgerEntry maps an aid transaction. Cash payments outside the aid
// purposes and records without a date yield ok=false.
func LedgerEntry(src LedgerSource, people, products Lookup) (core.LedgerEntry, bool) {
	switch s := src.(type) {
	case CashSource:
		p := s.Payment
		if !core.IsAidPurpose(p.Purpose) {
			return core.LedgerEntry{}, false
		}
		d, ok := core.ParseDate(p.Date)
		if !ok {
			return core.LedgerEntry{}, false
		}
		name := strings.TrimSpace(p.PersonName)
		if name == "" {
			name = UnknownPerson
		}
		currency := strings.ToUpper(strings.TrimSpace(p.Currency))
		if currency == "" {
			currency = "TRY"
		}
		return core.LedgerEntry{
			ID:            "cash-" + p.ID,
			PersonName:    name,
			Kind:          core.LedgerCash,
			Description:   PurposeLabel(p.Purpose),
			AmountDisplay: core.FormatMoney(p.Amount, currency),
			Date:          d,
			Amount:        p.Amount,
			Unit:          currency,
		}, true
	case InKindSource:
		t := s.Transaction
		d, ok := core.ParseDate(t.Date)
		if !ok {
			return core.LedgerEntry{}, false
		}
		return core.LedgerEntry{
			ID:            "inkind-" + t.ID,
			PersonName:    people.Resolve(t.PersonID, UnknownPerson),
			Kind:          core.LedgerInKind,
			Description:   products.Resolve(t.ProductID, UnknownProduct),
			AmountDisplay: strings.TrimSpace(core.FormatQuantity(t.Quantity) + " " + t.Unit),
			Date:          d,
			Amount:        t.Quantity,
			Unit:          t.Unit,
		}, true
	default:
		panic(fmt.Sprintf("normalize: unhandled ledger source %T", src))
	}
}

// MapPoint places a person on the map. People without coordinates are
// excluded.
func MapPoint(p core.Person) (core.MapPoint, bool) {
	if !p.HasCoordinates() {
		return core.MapPoint{}, false
	}
	return core.MapPoint{
		ID:          p.ID,
		Name:        p.Name,
		Nationality: p.Nationality,
		Latitude:    *p.Latitude,
		Longitude:   *p.Longitude,
	}, true
}

// MapPoints maps every locatable person.
func MapPoints(people []core.Person) []core.MapPoint {
	out := make([]core.MapPoint, 0, len(people))
	for _, p := range people {
		if mp, ok := MapPoint(p); ok {
			out = append(out, mp)
		}
	}
	return out
}

var purposeLabels = map[string]string{
	core.PurposeAid:         "Yardım Ödemesi",
	core.PurposeScholarship: "Burs Ödemesi",
	core.PurposeOrphan:      "Yetim Desteği",
	core.PurposeResilience:  "Yaşlı/Dayanıklılık Desteği",
	core.PurposeSalary:      "Maaş",
	core.PurposeRent:        "Kira",
}

// PurposeLabel returns the display label of a payment purpose.
func PurposeLabel(purpose string) string {
	if l, ok := purposeLabels[purpose]; ok {
		return l
	}
	return purpose
}

func joinDetails(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " · ")
}
