package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"dernek/internal/core"
)

func sampleEvents() []core.CalendarEvent {
	return []core.CalendarEvent{
		{ID: "event-e1", Title: "Genel Kurul", Date: core.NewDate(2024, 5, 25), Type: core.CalendarTypeEvent, Link: "/events/e1", Details: "14:00 · Dernek Merkezi"},
		{ID: "hearing-c1-h1", Title: "Duruşma: Kira Davası", Date: core.NewDate(2024, 5, 31), Type: core.CalendarTypeHearing, Link: "/cases/c1"},
	}
}

func TestRenderAllDayEvents(t *testing.T) {
	stamp := time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)
	out := Render(sampleEvents(), Options{Name: "Dernek Takvimi", BaseURL: "https://panel.example.org/", Stamp: stamp})

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	first := events[0]
	if got := first.Id(); got != "event-e1@dernek" {
		t.Errorf("UID = %q", got)
	}
	if got := first.GetProperty(ical.ComponentPropertySummary).Value; got != "Genel Kurul" {
		t.Errorf("SUMMARY = %q", got)
	}
	if got := first.GetProperty(ical.ComponentPropertyDtStart).Value; got != "20240525" {
		t.Errorf("DTSTART = %q, want 20240525", got)
	}
	if got := first.GetProperty(ical.ComponentPropertyDtEnd).Value; got != "20240526" {
		t.Errorf("DTEND = %q, want 20240526", got)
	}
	if got := first.GetProperty(ical.ComponentPropertyUrl).Value; got != "https://panel.example.org/events/e1" {
		t.Errorf("URL = %q", got)
	}

	second := events[1]
	if p := second.GetProperty(ical.ComponentPropertyDescription); p != nil {
		t.Errorf("unexpected DESCRIPTION %q", p.Value)
	}
	if got := second.GetProperty(ical.ComponentPropertyCategories).Value; got != "Hearing" {
		t.Errorf("CATEGORIES = %q", got)
	}
}

func TestRenderWithoutBaseURLOmitsLinks(t *testing.T) {
	out := Render(sampleEvents()[:1], Options{})
	if strings.Contains(out, "URL:") {
		t.Errorf("expected no URL property:\n%s", out)
	}
	if !strings.Contains(out, DefaultProductID) {
		t.Errorf("missing default PRODID:\n%s", out)
	}
}

func TestRenderEmptyMonth(t *testing.T) {
	out := Render(nil, Options{})
	if !strings.Contains(out, "BEGIN:VCALENDAR") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Errorf("unexpected calendar:\n%s", out)
	}
}
