package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
)

func tx(amount string, year int, month time.Month, day int, category string) core.Transaction {
	return core.Transaction{
		Kind:       core.KindExpense,
		Amount:     decimal.RequireFromString(amount),
		Date:       time.Date(year, month, day, 12, 0, 0, 0, time.UTC),
		CategoryID: category,
		UserID:     1,
	}
}

func TestMonthArithmetic(t *testing.T) {
	m := Month{Year: 2025, Month: time.January}

	assert.Equal(t, Month{Year: 2025, Month: time.March}, m.AddMonths(2))
	assert.Equal(t, Month{Year: 2024, Month: time.December}, m.AddMonths(-1))
	assert.Equal(t, Month{Year: 2026, Month: time.February}, m.AddMonths(13))
	assert.True(t, m.Before(m.AddMonths(1)))
	assert.False(t, m.AddMonths(1).Before(m))
	assert.Equal(t, "2025-01", m.String())
}

func TestLastMonths(t *testing.T) {
	now := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

	months := LastMonths(now, 4)

	require.Len(t, months, 4)
	assert.Equal(t, Month{Year: 2024, Month: time.November}, months[0])
	assert.Equal(t, Month{Year: 2025, Month: time.February}, months[3])
	assert.Nil(t, LastMonths(now, 0))
}

func TestMonthlyZeroFillsMissingMonths(t *testing.T) {
	txs := []core.Transaction{
		tx("100.00", 2025, time.January, 5, ""),
		tx("50.00", 2025, time.January, 20, ""),
		tx("30.00", 2025, time.March, 1, ""),
	}

	buckets := Monthly(txs, Month{Year: 2025, Month: time.January}, 3)

	require.Len(t, buckets, 3)
	assert.Equal(t, "150", buckets[0].Total.String())
	assert.True(t, buckets[1].Total.IsZero(), "february must be present with zero total")
	assert.Equal(t, "30", buckets[2].Total.String())
	assert.Equal(t, Month{Year: 2025, Month: time.February}, buckets[1].Month)
}

func TestMonthlySumMatchesTransactionSum(t *testing.T) {
	txs := []core.Transaction{
		tx("10.10", 2025, time.January, 1, ""),
		tx("20.25", 2025, time.February, 28, ""),
		tx("0.65", 2025, time.April, 30, ""),
		tx("999.99", 2025, time.June, 15, ""),
	}

	buckets := Monthly(txs, Month{Year: 2025, Month: time.January}, 6)

	want := decimal.Zero
	for _, tr := range txs {
		want = want.Add(tr.Amount)
	}
	assert.True(t, want.Equal(Sum(buckets)), "bucket totals must sum to transaction totals exactly")
}

func TestMonthlyIgnoresOutOfWindow(t *testing.T) {
	txs := []core.Transaction{
		tx("10.00", 2024, time.December, 31, ""),
		tx("20.00", 2025, time.January, 1, ""),
		tx("30.00", 2025, time.April, 1, ""),
	}

	buckets := Monthly(txs, Month{Year: 2025, Month: time.January}, 3)

	assert.Equal(t, "20", Sum(buckets).String())
}

func TestMonthlyByCategory(t *testing.T) {
	txs := []core.Transaction{
		tx("100.00", 2025, time.January, 5, "food"),
		tx("40.00", 2025, time.February, 5, "food"),
		tx("70.00", 2025, time.January, 9, "rent"),
		tx("5.00", 2025, time.February, 9, ""),
	}

	series := MonthlyByCategory(txs, Month{Year: 2025, Month: time.January}, 2)

	require.Len(t, series, 3)
	require.Len(t, series["food"], 2)
	assert.Equal(t, "100", series["food"][0].Total.String())
	assert.Equal(t, "40", series["food"][1].Total.String())
	assert.True(t, series["rent"][1].Total.IsZero())
	assert.Equal(t, "5", series[""][1].Total.String())
}

func TestSeries(t *testing.T) {
	buckets := []Bucket{
		{Total: decimal.NewFromInt(10)},
		{Total: decimal.Zero},
		{Total: decimal.RequireFromString("2.5")},
	}

	assert.Equal(t, []float64{10, 0, 2.5}, Series(buckets))
}
