// Package ics renders calendar events as an iCalendar feed.
package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"dernek/internal/core"
)

const (
	DefaultProductID = "-//dernek//Takvim//TR"
	uidDomain        = "dernek"
)

// Options controls the calendar envelope.
type Options struct {
	ProductID string
	Name      string
	// BaseURL prefixes the relative event links. Links are omitted when empty.
	BaseURL string
	// Stamp is written as DTSTAMP on every event.
	Stamp time.Time
}

// Render builds a calendar with one all-day VEVENT per event, in input order.
func Render(events []core.CalendarEvent, opts Options) string {
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)
	if opts.Name != "" {
		cal.SetName(opts.Name)
		cal.SetXWRCalName(opts.Name)
	}

	for _, e := range events {
		addEvent(cal, e, opts)
	}
	return cal.Serialize()
}

func addEvent(cal *ical.Calendar, e core.CalendarEvent, opts Options) {
	ev := cal.AddEvent(UID(e))
	ev.SetDtStampTime(opts.Stamp.UTC())
	ev.SetAllDayStartAt(e.Date.Time)
	ev.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
	ev.SetSummary(e.Title)
	if e.Details != "" {
		ev.SetDescription(e.Details)
	}
	ev.SetProperty(ical.ComponentPropertyCategories, string(e.Type))
	if opts.BaseURL != "" && e.Link != "" {
		ev.SetURL(strings.TrimRight(opts.BaseURL, "/") + e.Link)
	}
}

// UID is stable across exports so subscribed clients update in place.
func UID(e core.CalendarEvent) string {
	return e.ID + "@" + uidDomain
}
