package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/core"
	"finsight/internal/storage"
)

func insightTypes(insights []Insight) []string {
	types := make([]string, len(insights))
	for i, insight := range insights {
		types[i] = insight.Type
	}
	return types
}

func TestInsightsSpendingSwingUp(t *testing.T) {
	store := storage.NewMemoryStore()
	seedTx(store, 1, core.KindExpense, 1000, monthsAgo(1), "living", "Living")
	seedTx(store, 1, core.KindExpense, 1500, monthsAgo(0), "living", "Living")

	r := NewInsightReporter(store, store, InsightConfig{Now: fixedNow})
	insights, err := r.Insights(context.Background(), 1)
	require.NoError(t, err)

	require.NotEmpty(t, insights)
	assert.Equal(t, "danger", insights[0].Type)
	assert.Contains(t, insights[0].Message, "went up 50.0%")
}

func TestInsightsSpendingSwingDown(t *testing.T) {
	store := storage.NewMemoryStore()
	seedTx(store, 1, core.KindExpense, 1000, monthsAgo(1), "living", "Living")
	seedTx(store, 1, core.KindExpense, 500, monthsAgo(0), "living", "Living")

	r := NewInsightReporter(store, store, InsightConfig{Now: fixedNow})
	insights, err := r.Insights(context.Background(), 1)
	require.NoError(t, err)

	require.NotEmpty(t, insights)
	assert.Equal(t, "success", insights[0].Type)
	assert.Contains(t, insights[0].Message, "dropped 50.0%")
}

func TestInsightsSmallSwingIgnored(t *testing.T) {
	store := storage.NewMemoryStore()
	seedTx(store, 1, core.KindExpense, 1000, monthsAgo(1), "living", "Living")
	seedTx(store, 1, core.KindExpense, 1100, monthsAgo(0), "living", "Living")

	r := NewInsightReporter(store, store, InsightConfig{Now: fixedNow})
	insights, err := r.Insights(context.Background(), 1)
	require.NoError(t, err)
	assert.NotContains(t, insightTypes(insights), "danger")
}

func TestInsightsBalanceTrendDown(t *testing.T) {
	store := storage.NewMemoryStore()
	seedMonthly(store, 1, core.KindIncome, "salary", 1000, 2000, 3000)

	r := NewInsightReporter(store, store, InsightConfig{Now: fixedNow})
	insights, err := r.Insights(context.Background(), 1)
	require.NoError(t, err)

	found := false
	for _, insight := range insights {
		if insight.Type == "warning" {
			assert.Contains(t, insight.Message, "trending down")
			found = true
		}
	}
	assert.True(t, found)
}

func TestInsightsCategorySpike(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddCategories(core.Category{ID: "dining", Name: "Dining", Type: core.CategoryExpense})
	// A long history of modest meals, then a blowout month.
	for i := 1; i <= 6; i++ {
		seedTx(store, 1, core.KindExpense, 50, monthsAgo(i), "dining", "Dining")
	}
	seedTx(store, 1, core.KindExpense, 400, monthsAgo(0), "dining", "Dining")

	r := NewInsightReporter(store, store, InsightConfig{Now: fixedNow})
	insights, err := r.Insights(context.Background(), 1)
	require.NoError(t, err)

	found := false
	for _, insight := range insights {
		if insight.Type == "warning" {
			assert.Contains(t, insight.Message, "'Dining'")
			found = true
		}
	}
	assert.True(t, found)
}

func TestInsightsIncomeDrop(t *testing.T) {
	store := storage.NewMemoryStore()
	seedTx(store, 1, core.KindIncome, 3000, monthsAgo(1), "salary", "Salary")
	seedTx(store, 1, core.KindIncome, 1000, monthsAgo(0), "salary", "Salary")

	r := NewInsightReporter(store, store, InsightConfig{Now: fixedNow})
	insights, err := r.Insights(context.Background(), 1)
	require.NoError(t, err)

	found := false
	for _, insight := range insights {
		if insight.Message == "Your income fell significantly compared to last month." {
			assert.Equal(t, "danger", insight.Type)
			found = true
		}
	}
	assert.True(t, found)
}

func TestInsightsQuietUserGetsFallback(t *testing.T) {
	r := NewInsightReporter(storage.NewMemoryStore(), storage.NewMemoryStore(), InsightConfig{Now: fixedNow})
	insights, err := r.Insights(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, insights, 1)
	assert.Equal(t, "info", insights[0].Type)
	assert.Equal(t, "No critical insights right now. Your finances look stable.", insights[0].Message)
}
