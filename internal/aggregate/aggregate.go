// Package aggregate groups raw transactions into calendar-month buckets.
// Buckets are always zero-filled: a window of n months yields exactly n
// buckets in chronological order, so the sum of bucket totals equals the sum
// of the underlying transaction amounts in that window.
package aggregate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// AddMonths returns the month n months after m (n may be negative).
func (m Month) AddMonths(n int) Month {
	idx := m.Year*12 + int(m.Month) - 1 + n
	return Month{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Before reports whether m precedes o.
func (m Month) Before(o Month) bool {
	return m.Year*12+int(m.Month) < o.Year*12+int(o.Month)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// LastMonths returns n consecutive months in ascending order, ending with the
// month containing t.
func LastMonths(t time.Time, n int) []Month {
	if n <= 0 {
		return nil
	}
	months := make([]Month, n)
	end := MonthOf(t)
	for i := 0; i < n; i++ {
		months[i] = end.AddMonths(i - n + 1)
	}
	return months
}

// Bucket is the total transaction amount for one month, optionally narrowed
// to a single category.
type Bucket struct {
	Month      Month
	CategoryID string
	Total      decimal.Decimal
}

// Monthly buckets txs into one bucket per month, starting at start (inclusive)
// for the given number of months. Transactions outside the window are ignored.
func Monthly(txs []core.Transaction, start Month, months int) []Bucket {
	if months <= 0 {
		return nil
	}
	buckets := make([]Bucket, months)
	for i := range buckets {
		buckets[i] = Bucket{Month: start.AddMonths(i), Total: decimal.Zero}
	}
	for _, tx := range txs {
		if i, ok := bucketIndex(start, months, tx.Date); ok {
			buckets[i].Total = buckets[i].Total.Add(tx.Amount)
		}
	}
	return buckets
}

// MonthlyByCategory buckets txs per category over the same window. Every
// category that appears in txs gets a full zero-filled series; uncategorized
// transactions land under the empty key.
func MonthlyByCategory(txs []core.Transaction, start Month, months int) map[string][]Bucket {
	if months <= 0 {
		return nil
	}
	series := make(map[string][]Bucket)
	for _, tx := range txs {
		i, ok := bucketIndex(start, months, tx.Date)
		if !ok {
			continue
		}
		buckets, seen := series[tx.CategoryID]
		if !seen {
			buckets = make([]Bucket, months)
			for j := range buckets {
				buckets[j] = Bucket{Month: start.AddMonths(j), CategoryID: tx.CategoryID, Total: decimal.Zero}
			}
			series[tx.CategoryID] = buckets
		}
		buckets[i].Total = buckets[i].Total.Add(tx.Amount)
	}
	return series
}

// TotalsByCategory sums transaction amounts per category id.
func TotalsByCategory(txs []core.Transaction) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		totals[tx.CategoryID] = totals[tx.CategoryID].Add(tx.Amount)
	}
	return totals
}

// Series converts bucket totals into a float64 slice, preserving order.
func Series(buckets []Bucket) []float64 {
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = b.Total.InexactFloat64()
	}
	return values
}

// Sum returns the exact sum of bucket totals.
func Sum(buckets []Bucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Total)
	}
	return total
}

func bucketIndex(start Month, months int, date time.Time) (int, bool) {
	m := MonthOf(date)
	i := (m.Year-start.Year)*12 + int(m.Month) - int(start.Month)
	if i < 0 || i >= months {
		return 0, false
	}
	return i, true
}
