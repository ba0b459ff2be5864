// Package core provides money parsing and formatting utilities.
//
// Amounts are kept as decimal.Decimal end to end. Display strings produced
// here are presentational only and must never be parsed back for arithmetic.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"TRY": "₺",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatMoney formats an amount the way the panel displays currency
// (tr-TR grouping): "₺1.234,50". Unknown currencies get the code as suffix.
func FormatMoney(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "TRY"
	}
	neg := amount.IsNegative()
	s := groupThousands(amount.Abs().StringFixed(2))

	var out string
	if sym, ok := currencySymbols[currency]; ok {
		out = sym + s
	} else {
		out = s + " " + currency
	}
	if neg {
		return "-" + out
	}
	return out
}

// FormatQuantity renders an in-kind quantity without trailing zeros.
func FormatQuantity(q decimal.Decimal) string {
	return q.String()
}

// groupThousands turns "1234567.89" into "1.234.567,89".
func groupThousands(fixed string) string {
	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}
