// Package http provides HTTP server and handler implementations.
//
// This file implements parsing and validation of query parameters.

package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dernek/internal/calendar"
	"dernek/internal/core"
	"dernek/internal/filter"
	"dernek/internal/ledger"
)

const maxSearchLength = 100

var (
	errInvalidYear  = errors.New("geçersiz yıl")
	errInvalidMonth = errors.New("geçersiz ay")
	errInvalidKind  = errors.New("geçersiz kayıt türü")
)

// ParseMonthParams extracts year and month from query parameters, defaulting
// each to the month of now. Out-of-range values are rejected.
func ParseMonthParams(query url.Values, now time.Time) (calendar.Month, error) {
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return calendar.Month{}, fmt.Errorf("%w: %q", errInvalidYear, v)
		}
		year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return calendar.Month{}, fmt.Errorf("%w: %q", errInvalidMonth, v)
		}
		month = m
	}

	return calendar.NewMonth(year, time.Month(month)), nil
}

// ParseLedgerFilter reads kind and q. An empty kind means all kinds.
func ParseLedgerFilter(query url.Values) (ledger.Filter, error) {
	kind := strings.TrimSpace(query.Get("kind"))
	if kind == "" {
		kind = filter.All
	}
	if kind != filter.All && !core.LedgerKind(kind).Valid() {
		return ledger.Filter{}, fmt.Errorf("%w: %q", errInvalidKind, kind)
	}

	search := sanitizeInput(query.Get("q"))
	if r := []rune(search); len(r) > maxSearchLength {
		search = string(r[:maxSearchLength])
	}

	return ledger.Filter{Kind: kind, Search: search}, nil
}

// RefreshRequested reports whether the client asked to bypass cached
// snapshots.
func RefreshRequested(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("refresh"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *JSONResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET accepts GET and HEAD.
func RequireGET(r *http.Request) *JSONResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
