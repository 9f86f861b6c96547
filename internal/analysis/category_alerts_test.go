package analysis

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
	"finsight/internal/storage"
)

func categoryStore(totals map[string]float64) *storage.MemoryStore {
	store := storage.NewMemoryStore()
	for id, total := range totals {
		store.AddCategories(core.Category{ID: id, Name: id, Type: core.CategoryExpense})
		if total > 0 {
			seedTx(store, 1, core.KindExpense, total, monthsAgo(0), id, id)
		}
	}
	return store
}

func TestCategoryAlertsBalancedSpending(t *testing.T) {
	store := categoryStore(map[string]float64{"a": 100, "b": 120, "c": 110})
	a := NewCategoryAlertAnalyzer(store, store, CategoryAlertConfig{Now: fixedNow})

	alerts, err := a.Analyze(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestCategoryAlertsWarnsAboveAverage(t *testing.T) {
	store := categoryStore(map[string]float64{"a": 100, "b": 100, "c": 600})
	a := NewCategoryAlertAnalyzer(store, store, CategoryAlertConfig{Now: fixedNow})

	alerts, err := a.Analyze(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, core.LevelWarning, alerts[0].Level)
	assert.Equal(t, "High spending in c", alerts[0].Title)
}

func TestCategoryAlertsCriticalStacksOnWarning(t *testing.T) {
	store := categoryStore(map[string]float64{"a": 100, "b": 100, "c": 100, "d": 1000})
	a := NewCategoryAlertAnalyzer(store, store, CategoryAlertConfig{Now: fixedNow})

	alerts, err := a.Analyze(context.Background(), 1)
	require.NoError(t, err)

	// The same category crosses both factors and produces both alerts.
	require.Len(t, alerts, 2)
	assert.Equal(t, core.LevelWarning, alerts[0].Level)
	assert.Equal(t, core.LevelCritical, alerts[1].Level)
	assert.Contains(t, alerts[1].Message, "'d'")
}

func TestCategoryAlertsIgnoresOldSpending(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddCategories(
		core.Category{ID: "a", Name: "a", Type: core.CategoryExpense},
		core.Category{ID: "b", Name: "b", Type: core.CategoryExpense},
		core.Category{ID: "c", Name: "c", Type: core.CategoryExpense},
		core.Category{ID: "d", Name: "d", Type: core.CategoryExpense},
	)
	// The blowout happened two months ago, outside the 30-day window.
	seedTx(store, 1, core.KindExpense, 5000, monthsAgo(2), "d", "d")
	for _, id := range []string{"a", "b", "c"} {
		seedTx(store, 1, core.KindExpense, 100, monthsAgo(0), id, id)
	}

	a := NewCategoryAlertAnalyzer(store, store, CategoryAlertConfig{Now: fixedNow})
	alerts, err := a.Analyze(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func goalStore(target, monthSpend float64) *storage.MemoryStore {
	store := storage.NewMemoryStore()
	store.AddGoals(core.CategoryGoal{
		ID: 1, UserID: 1, CategoryID: "dining", CategoryName: "Dining",
		TargetAmount: decimal.NewFromFloat(target),
	})
	if monthSpend > 0 {
		seedTx(store, 1, core.KindExpense, monthSpend, monthsAgo(0), "dining", "Dining")
	}
	// Last month's spend never counts against this month's goal.
	seedTx(store, 1, core.KindExpense, 10000, monthsAgo(1), "dining", "Dining")
	return store
}

func TestGoalAlerts(t *testing.T) {
	tests := []struct {
		name       string
		target     float64
		monthSpend float64
		wantLevel  core.AlertLevel
		wantTitle  string
	}{
		{name: "well under target", target: 500, monthSpend: 200},
		{name: "approaching target", target: 500, monthSpend: 450, wantLevel: core.LevelWarning, wantTitle: "Goal almost reached in Dining"},
		{name: "target exceeded", target: 500, monthSpend: 520, wantLevel: core.LevelCritical, wantTitle: "Goal exceeded in Dining"},
		{name: "zero target never fires", target: 0, monthSpend: 9999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := goalStore(tt.target, tt.monthSpend)
			a := NewCategoryGoalAnalyzer(store, store, GoalAlertConfig{Now: fixedNow})

			alerts, err := a.Analyze(context.Background(), 1)
			require.NoError(t, err)

			if tt.wantTitle == "" {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.wantLevel, alerts[0].Level)
			assert.Equal(t, tt.wantTitle, alerts[0].Title)
		})
	}
}
