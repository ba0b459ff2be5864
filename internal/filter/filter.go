// Package filter composes record predicates for list-style views.
//
// A record passes when every active predicate returns true. An inactive
// filter value ("" or "all") always passes, so callers can pass raw UI
// filter state straight through.
package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// All is the sentinel for "no restriction" on a categorical filter.
const All = "all"

// Predicate reports whether a record passes a single filter dimension.
type Predicate[T any] func(T) bool

// Active reports whether a filter value restricts anything.
func Active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != All
}

// Equals matches records whose field equals value exactly.
func Equals[T any](value string, field func(T) string) Predicate[T] {
	if !Active(value) {
		return pass[T]
	}
	value = strings.TrimSpace(value)
	return func(item T) bool {
		return field(item) == value
	}
}

// OneOf matches records whose field is in values. An empty set passes.
func OneOf[T any](values []string, field func(T) string) Predicate[T] {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if Active(v) {
			set[v] = struct{}{}
		}
	}
	if len(set) == 0 {
		return pass[T]
	}
	return func(item T) bool {
		_, ok := set[field(item)]
		return ok
	}
}

// Contains matches records where any of the fields contains term,
// case-insensitively. A term of only spaces is inactive.
func Contains[T any](term string, fields ...func(T) string) Predicate[T] {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return pass[T]
	}
	needle := Fold(term)
	return func(item T) bool {
		for _, f := range fields {
			if strings.Contains(Fold(f(item)), needle) {
				return true
			}
		}
		return false
	}
}

// And passes only when every predicate passes. Nil predicates are ignored.
func And[T any](ps ...Predicate[T]) Predicate[T] {
	return func(item T) bool {
		for _, p := range ps {
			if p != nil && !p(item) {
				return false
			}
		}
		return true
	}
}

// Apply returns a new slice with the items that pass every predicate.
// The input slice is never modified.
func Apply[T any](items []T, ps ...Predicate[T]) []T {
	match := And(ps...)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Fold lowercases s using Turkish rules, then merges dotless ı into i so
// that I, ı, İ and i all compare equal.
func Fold(s string) string {
	// cases.Caser keeps state, so a fresh one per call.
	return strings.ReplaceAll(cases.Lower(language.Turkish).String(s), "ı", "i")
}

func pass[T any](T) bool { return true }
