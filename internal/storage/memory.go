package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"finsight/internal/core"
)

// AlertEntry is one appended alert-history row.
type AlertEntry struct {
	UserID    int64
	Alert     core.Alert
	CreatedAt time.Time
}

// MemoryStore is an in-memory implementation of the analysis ports, used by
// tests and the demo backend.
type MemoryStore struct {
	mu     sync.RWMutex
	txs    []core.Transaction
	cats   []core.Category
	goals  []core.CategoryGoal
	alerts []AlertEntry
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// AddTransactions seeds transactions into the store.
func (s *MemoryStore) AddTransactions(txs ...core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, txs...)
}

// AddCategories seeds category metadata.
func (s *MemoryStore) AddCategories(cats ...core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = append(s.cats, cats...)
}

// AddGoals seeds category goals.
func (s *MemoryStore) AddGoals(goals ...core.CategoryGoal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append(s.goals, goals...)
}

// ListTransactions returns the owner's transactions of one kind with
// from inclusive and to exclusive, ordered by date ascending.
func (s *MemoryStore) ListTransactions(_ context.Context, userID int64, kind core.TransactionKind, from, to time.Time) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.UserID != userID || tx.Kind != kind {
			continue
		}
		if tx.Date.Before(from) || !tx.Date.Before(to) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// ListCategories returns categories of the given type.
func (s *MemoryStore) ListCategories(_ context.Context, typ core.CategoryType) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Category
	for _, cat := range s.cats {
		if cat.Type == typ {
			out = append(out, cat)
		}
	}
	return out, nil
}

// ListGoals returns the owner's category goals.
func (s *MemoryStore) ListGoals(_ context.Context, userID int64) ([]core.CategoryGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.CategoryGoal
	for _, goal := range s.goals {
		if goal.UserID == userID {
			out = append(out, goal)
		}
	}
	return out, nil
}

// RecordAlert appends an alert-history entry.
func (s *MemoryStore) RecordAlert(_ context.Context, userID int64, alert core.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, AlertEntry{UserID: userID, Alert: alert, CreatedAt: s.now()})
	return nil
}

// AlertHistory returns a copy of the appended alert entries.
func (s *MemoryStore) AlertHistory() []AlertEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AlertEntry, len(s.alerts))
	copy(out, s.alerts)
	return out
}
