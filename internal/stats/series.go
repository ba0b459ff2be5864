package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"dernek/internal/core"
)

// DefaultWindow is the number of most recent months kept in a series.
const DefaultWindow = 12

// Series keys for the income/expense chart.
const (
	SeriesIncome  = string(core.DirectionIncome)
	SeriesExpense = string(core.DirectionExpense)
)

// MonthBucket holds per-category sums for one "YYYY-MM" key.
type MonthBucket struct {
	Key    string                     `json:"key"`
	Values map[string]decimal.Decimal `json:"values"`
}

// Value returns the sum for category, zero when absent.
func (b MonthBucket) Value(category string) decimal.Decimal {
	if v, ok := b.Values[category]; ok {
		return v
	}
	return decimal.Zero
}

// MonthSeries is a month-bucketed series. Skipped counts records that had
// no usable date.
type MonthSeries struct {
	Buckets []MonthBucket `json:"buckets"`
	Skipped int           `json:"skipped"`
}

// MonthBuckets groups items by month of date and sums value per category.
// Only the last window distinct months are kept; window <= 0 keeps all.
func MonthBuckets[T any](items []T, date func(T) (core.Date, bool), category func(T) string, value func(T) decimal.Decimal, window int) MonthSeries {
	byKey := make(map[string]MonthBucket)
	skipped := 0
	for _, item := range items {
		d, ok := date(item)
		if !ok || d.IsEmpty() {
			skipped++
			continue
		}
		key := d.MonthKey()
		b, seen := byKey[key]
		if !seen {
			b = MonthBucket{Key: key, Values: make(map[string]decimal.Decimal)}
			byKey[key] = b
		}
		c := category(item)
		b.Values[c] = b.Value(c).Add(value(item))
	}

	buckets := make([]MonthBucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	if window > 0 && len(buckets) > window {
		buckets = buckets[len(buckets)-window:]
	}
	return MonthSeries{Buckets: buckets, Skipped: skipped}
}

// IncomeExpense buckets financial records by month with one sub-sum per
// direction. Both directions are present in every bucket.
func IncomeExpense(records []core.FinancialRecord, window int) MonthSeries {
	s := MonthBuckets(records,
		func(r core.FinancialRecord) (core.Date, bool) { return core.ParseDate(r.Date) },
		func(r core.FinancialRecord) string { return string(r.Direction) },
		func(r core.FinancialRecord) decimal.Decimal { return r.Amount },
		window,
	)
	for _, b := range s.Buckets {
		b.Values[SeriesIncome] = b.Value(SeriesIncome)
		b.Values[SeriesExpense] = b.Value(SeriesExpense)
	}
	return s
}

// SeriesTotal adds every category value of every bucket.
func SeriesTotal(s MonthSeries) decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Buckets {
		for _, v := range b.Values {
			total = total.Add(v)
		}
	}
	return total
}
