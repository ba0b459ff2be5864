package normalize

import "dernek/internal/core"

// CalendarSource is one dated record that can appear on the calendar.
// The set of cases is closed: EventSource, TaskSource, HearingSource.
type CalendarSource interface {
	calendarSource()
}

// EventSource wraps a scheduled event.
type EventSource struct {
	Event core.Event
}

// TaskSource is a task nested in its project.
type TaskSource struct {
	Project core.Project
	Task    core.Task
}

// HearingSource is a hearing nested in its case.
type HearingSource struct {
	Case    core.Case
	Hearing core.Hearing
}

func (EventSource) calendarSource()   {}
func (TaskSource) calendarSource()    {}
func (HearingSource) calendarSource() {}

// LedgerSource is one aid transaction: CashSource or InKindSource.
type LedgerSource interface {
	ledgerSource()
}

type CashSource struct {
	Payment core.CashPayment
}

type InKindSource struct {
	Transaction core.InKindTransaction
}

func (CashSource) ledgerSource()   {}
func (InKindSource) ledgerSource() {}

// CalendarSources flattens the three collections into calendar sources in
// fetch order: events, then tasks per project, then hearings per case.
func CalendarSources(events []core.Event, projects []core.Project, cases []core.Case) []CalendarSource {
	n := len(events)
	for _, p := range projects {
		n += len(p.Tasks)
	}
	for _, c := range cases {
		n += len(c.Hearings)
	}

	out := make([]CalendarSource, 0, n)
	for _, e := range events {
		out = append(out, EventSource{Event: e})
	}
	for _, p := range projects {
		for _, t := range p.Tasks {
			out = append(out, TaskSource{Project: p, Task: t})
		}
	}
	for _, c := range cases {
		for _, h := range c.Hearings {
			out = append(out, HearingSource{Case: c, Hearing: h})
		}
	}
	return out
}
