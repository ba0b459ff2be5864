// Package calendar projects canonical calendar events onto a month grid.
//
// Weeks start on Monday. The reference "today" is always passed in by the
// caller so projections are deterministic.
package calendar

import (
	"fmt"
	"time"

	"dernek/internal/core"
)

// Month identifies a calendar month. It is always anchored on day 1.
type Month struct {
	Year  int
	Month time.Month
}

// Cell is one grid slot. Blank leading cells have Day == 0.
type Cell struct {
	Day     int                  `json:"day"`
	IsToday bool                 `json:"isToday"`
	Events  []core.CalendarEvent `json:"events"`
}

// Grid is the render-ready month view.
type Grid struct {
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	LeadingBlanks int    `json:"leadingBlanks"`
	DaysInMonth   int    `json:"daysInMonth"`
	Cells         []Cell `json:"cells"`
}

// NewMonth normalizes year/month (month may overflow, e.g. 13 -> January of
// next year).
func NewMonth(year int, month time.Month) Month {
	return MonthOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// First returns day 1 of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next moves to the following month, starting from day 1.
func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

// Prev moves to the preceding month, starting from day 1.
func (m Month) Prev() Month {
	return MonthOf(m.First().AddDate(0, -1, 0))
}

func (m Month) String() string {
	return m.First().Format("2006-01")
}

// FirstWeekdayOffset is the number of blank cells before day 1 in a
// Monday-first week.
func FirstWeekdayOffset(m Month) int {
	return (int(m.First().Weekday()) + 6) % 7
}

// DaysInMonth uses day 0 of the following month, which is the last day of m.
// A non-positive result means the month was built wrong and panics.
func DaysInMonth(m Month) int {
	n := time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if n <= 0 {
		panic(fmt.Sprintf("calendar: %s has %d days", m, n))
	}
	return n
}

// Bucket groups the events of month m by day of month. Events of other
// months are ignored; within a day the input order is kept.
func Bucket(m Month, events []core.CalendarEvent) map[int][]core.CalendarEvent {
	days := make(map[int][]core.CalendarEvent)
	for _, ev := range events {
		if ev.Date.Year() != m.Year || ev.Date.Month() != m.Month {
			continue
		}
		d := ev.Date.Day()
		days[d] = append(days[d], ev)
	}
	return days
}

// Project builds the grid for month m.
func Project(m Month, events []core.CalendarEvent, today time.Time) Grid {
	offset := FirstWeekdayOffset(m)
	n := DaysInMonth(m)
	days := Bucket(m, events)

	ty, tm, td := today.Date()
	cells := make([]Cell, offset, offset+n)
	for i := range cells {
		cells[i].Events = []core.CalendarEvent{}
	}
	for day := 1; day <= n; day++ {
		evs := days[day]
		if evs == nil {
			evs = []core.CalendarEvent{}
		}
		cells = append(cells, Cell{
			Day:     day,
			IsToday: ty == m.Year && tm == m.Month && td == day,
			Events:  evs,
		})
	}

	return Grid{
		Year:          m.Year,
		Month:         int(m.Month),
		LeadingBlanks: offset,
		DaysInMonth:   n,
		Cells:         cells,
	}
}

// Weeks splits the cells into rows of seven. The last row may be short.
func (g Grid) Weeks() [][]Cell {
	var weeks [][]Cell
	for i := 0; i < len(g.Cells); i += 7 {
		end := i + 7
		if end > len(g.Cells) {
			end = len(g.Cells)
		}
		weeks = append(weeks, g.Cells[i:end])
	}
	return weeks
}

// EventCount is the number of events placed on the grid.
func (g Grid) EventCount() int {
	n := 0
	for _, c := range g.Cells {
		n += len(c.Events)
	}
	return n
}

// Events returns the placed events in day order.
func (g Grid) Events() []core.CalendarEvent {
	out := make([]core.CalendarEvent, 0, g.EventCount())
	for _, c := range g.Cells {
		out = append(out, c.Events...)
	}
	return out
}
