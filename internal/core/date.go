package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing stored date strings.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Date is a calendar day. The wrapped time is always UTC midnight of the day
// as it was written in the source record.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a stored date string. Time-of-day and offsets are dropped;
// the calendar day keeps the components written in the string. ok is false for
// empty or unparsable input.
func ParseDate(s string) (d Date, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, day := t.Date()
		return NewDate(y, int(m), day), true
	}
	return Date{}, false
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// MonthKey returns the "YYYY-MM" bucket key of the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// SameDay reports whether t falls on the same calendar day (in t's location).
func (d Date) SameDay(t time.Time) bool {
	y, m, day := t.Date()
	return d.Year() == y && d.Month() == m && d.Day() == day
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts null and any layout ParseDate accepts.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*d = Date{}
		return nil
	}
	unquoted, err := strconv.Unquote(s)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	parsed, ok := ParseDate(unquoted)
	if !ok && strings.TrimSpace(unquoted) != "" {
		return fmt.Errorf("date: cannot parse %q", unquoted)
	}
	*d = parsed
	return nil
}
