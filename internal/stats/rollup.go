// Package stats reduces record collections into chart-ready series.
//
// Rollups always read typed source fields. Buckets come out in first-seen
// order for categorical series and ascending "YYYY-MM" order for month series.
package stats

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Unspecified collects records whose grouping field is empty.
const Unspecified = "Belirtilmemiş"

// Bucket is one categorical rollup entry.
type Bucket struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
}

// rollup accumulates buckets keyed by label, remembering first-seen order.
type rollup struct {
	index   map[string]int
	buckets []Bucket
}

func newRollup() *rollup {
	return &rollup{index: make(map[string]int)}
}

func (r *rollup) add(key string, v decimal.Decimal) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = Unspecified
	}
	i, ok := r.index[key]
	if !ok {
		i = len(r.buckets)
		r.index[key] = i
		r.buckets = append(r.buckets, Bucket{Key: key, Sum: decimal.Zero})
	}
	r.buckets[i].Count++
	r.buckets[i].Sum = r.buckets[i].Sum.Add(v)
}

func (r *rollup) result() []Bucket {
	if r.buckets == nil {
		return []Bucket{}
	}
	return r.buckets
}

// CountBy counts records per key. Sum mirrors Count.
func CountBy[T any](items []T, key func(T) string) []Bucket {
	r := newRollup()
	for _, item := range items {
		r.add(key(item), decimal.NewFromInt(1))
	}
	return r.result()
}

// SumBy sums value per key.
func SumBy[T any](items []T, key func(T) string, value func(T) decimal.Decimal) []Bucket {
	r := newRollup()
	for _, item := range items {
		r.add(key(item), value(item))
	}
	return r.result()
}

// SumIntBy sums an integer field per key, e.g. recipients reached.
func SumIntBy[T any](items []T, key func(T) string, value func(T) int) []Bucket {
	return SumBy(items, key, func(item T) decimal.Decimal {
		return decimal.NewFromInt(int64(value(item)))
	})
}

// Total adds up the sums of all buckets.
func Total(buckets []Bucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Sum)
	}
	return total
}

// TotalCount adds up the counts of all buckets.
func TotalCount(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		n += b.Count
	}
	return n
}
