package reports

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
	"finsight/internal/log"
	"finsight/internal/storage"
)

func discardLogger() *log.Logger {
	return log.NewWithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), log.ComponentReports)
}

func testService(t *testing.T, store *storage.MemoryStore, now time.Time) *Service {
	t.Helper()
	return NewService(
		Sources{
			Transactions: store,
			Categories:   store,
			Goals:        store,
			AlertHistory: store,
		},
		Config{
			DefaultHorizonMonths: 6,
			CacheTTL:             time.Minute,
			Now:                  func() time.Time { return now },
		},
		discardLogger(),
	)
}

func seedMonths(store *storage.MemoryStore, userID int64, kind core.TransactionKind, now time.Time, amounts ...float64) {
	for i, amount := range amounts {
		date := now.AddDate(0, -(len(amounts) - i), 0)
		store.AddTransactions(core.Transaction{
			ID:          int64(i + 1),
			Kind:        kind,
			Description: "seed",
			Amount:      decimal.NewFromFloat(amount),
			Date:        date,
			UserID:      userID,
		})
	}
}

func TestForecastHorizonBounds(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	svc := testService(t, storage.NewMemoryStore(), now)

	for _, months := range []int{0, -1, 37, 100} {
		_, err := svc.Forecast(context.Background(), 1, months)
		assert.ErrorIs(t, err, ErrInvalidHorizon, "months=%d", months)

		_, err = svc.DebtRisk(context.Background(), 1, months)
		assert.ErrorIs(t, err, ErrInvalidHorizon, "months=%d", months)

		_, err = svc.Scenario(context.Background(), 1, months, 10, -10)
		assert.ErrorIs(t, err, ErrInvalidHorizon, "months=%d", months)
	}

	_, err := svc.Forecast(context.Background(), 1, MinHorizonMonths)
	assert.NoError(t, err)
	_, err = svc.Forecast(context.Background(), 1, MaxHorizonMonths)
	assert.NoError(t, err)
}

func TestForecastCached(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	store := storage.NewMemoryStore()
	seedMonths(store, 1, core.KindIncome, now, 2000, 2000, 2000, 2000)
	seedMonths(store, 1, core.KindExpense, now, 1500, 1500, 1500, 1500)
	svc := testService(t, store, now)

	first, err := svc.Forecast(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, first.Projections, 3)

	// New data does not show up until the cache entry expires.
	store.AddTransactions(core.Transaction{
		ID: 99, Kind: core.KindExpense, Description: "late",
		Amount: decimal.NewFromInt(9000), Date: now.AddDate(0, -1, 0), UserID: 1,
	})
	second, err := svc.Forecast(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A different horizon is a different cache entry and sees the new data.
	other, err := svc.Forecast(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.NotEqual(t, first.Projections[0].Expense, other.Projections[0].Expense)
}

func TestScoreCachedPerOwner(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	store := storage.NewMemoryStore()
	seedMonths(store, 1, core.KindIncome, now, 3000, 3000, 3000)
	seedMonths(store, 2, core.KindIncome, now, 1000)
	seedMonths(store, 2, core.KindExpense, now, 995)
	svc := testService(t, store, now)

	first, err := svc.Score(context.Background(), 1)
	require.NoError(t, err)

	cached, err := svc.Score(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	other, err := svc.Score(context.Background(), 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.Score, other.Score)
}

func TestDefaultHorizonFallback(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	svc := NewService(
		Sources{Transactions: storage.NewMemoryStore()},
		Config{DefaultHorizonMonths: 0, Now: func() time.Time { return now }},
		discardLogger(),
	)
	assert.Equal(t, 6, svc.DefaultHorizon())
}

func TestAlertsWithoutRecorder(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	store := storage.NewMemoryStore()
	seedMonths(store, 1, core.KindIncome, now, 2000, 2000, 2000)
	svc := NewService(
		Sources{Transactions: store, Categories: store, Goals: store},
		Config{DefaultHorizonMonths: 6, Now: func() time.Time { return now }},
		discardLogger(),
	)

	feed, err := svc.Alerts(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, feed.Summary)
}

func TestHorizonErrorMessage(t *testing.T) {
	err := validateHorizon(40)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidHorizon))
	assert.Contains(t, err.Error(), "40")
}
