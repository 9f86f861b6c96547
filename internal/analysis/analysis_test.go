package analysis

import (
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
	"finsight/internal/storage"
)

// All engine tests run against a frozen clock so month windows are stable.
var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// monthsAgo lands an hour before the frozen clock so seeds in the current
// month stay inside windows that end exclusively at now.
func monthsAgo(n int) time.Time { return testNow.AddDate(0, -n, 0).Add(-time.Hour) }

var txIDSeq atomic.Int64

func seedTx(store *storage.MemoryStore, userID int64, kind core.TransactionKind, amount float64, date time.Time, categoryID, categoryName string) core.Transaction {
	tx := core.Transaction{
		ID:           txIDSeq.Add(1),
		Kind:         kind,
		Description:  "seed",
		Amount:       decimal.NewFromFloat(amount),
		Date:         date,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		UserID:       userID,
	}
	store.AddTransactions(tx)
	return tx
}

// seedMonthly seeds one transaction per trailing month, index 0 being the
// current month.
func seedMonthly(store *storage.MemoryStore, userID int64, kind core.TransactionKind, categoryID string, amounts ...float64) {
	for i, amount := range amounts {
		seedTx(store, userID, kind, amount, monthsAgo(i), categoryID, categoryID)
	}
}
