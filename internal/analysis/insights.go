package analysis

import (
	"context"
	"fmt"
	"time"

	"finsight/internal/aggregate"
	"finsight/internal/core"
	"finsight/internal/stats"
)

// Insight is a single human-readable observation about recent activity.
type Insight struct {
	Type    string `json:"type"` // danger | warning | success | info
	Message string `json:"message"`
}

// InsightConfig controls the month-over-month comparison thresholds.
type InsightConfig struct {
	SwingPercent      float64 // expense change worth mentioning, default 20
	IncomeDropRatio   float64 // income below this fraction of last month is a drop, default 0.8
	CategorySpikeMult float64 // month spend above this multiple of the category average spikes, default 1.5
	Now               func() time.Time
}

func (c InsightConfig) withDefaults() InsightConfig {
	if c.SwingPercent <= 0 {
		c.SwingPercent = 20
	}
	if c.IncomeDropRatio <= 0 {
		c.IncomeDropRatio = 0.8
	}
	if c.CategorySpikeMult <= 0 {
		c.CategorySpikeMult = 1.5
	}
	c.Now = defaultNow(c.Now)
	return c
}

// InsightReporter surfaces short narrative findings: expense swings against
// last month, the three-month balance trajectory, categories spending far
// above their own average, and income drops.
type InsightReporter struct {
	src  TransactionSource
	cats CategorySource
	cfg  InsightConfig
}

func NewInsightReporter(src TransactionSource, cats CategorySource, cfg InsightConfig) *InsightReporter {
	return &InsightReporter{src: src, cats: cats, cfg: cfg.withDefaults()}
}

// Insights returns the findings for the current month. The list is never
// empty; a neutral entry stands in when nothing is notable.
func (r *InsightReporter) Insights(ctx context.Context, userID int64) ([]Insight, error) {
	now := r.cfg.Now()
	var insights []Insight

	expenseSwing, err := r.expenseSwing(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	insights = append(insights, expenseSwing...)

	balanceTrend, err := r.balanceTrend(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	insights = append(insights, balanceTrend...)

	spikes, err := r.categorySpikes(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	insights = append(insights, spikes...)

	incomeDrop, err := r.incomeDrop(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	insights = append(insights, incomeDrop...)

	if len(insights) == 0 {
		insights = append(insights, Insight{
			Type:    "info",
			Message: "No critical insights right now. Your finances look stable.",
		})
	}
	return insights, nil
}

func (r *InsightReporter) expenseSwing(ctx context.Context, userID int64, now time.Time) ([]Insight, error) {
	current, previous, err := r.lastTwoMonthTotals(ctx, userID, core.KindExpense, now)
	if err != nil {
		return nil, err
	}
	if previous <= 0 {
		return nil, nil
	}
	diff := (current - previous) / previous * 100
	switch {
	case diff > r.cfg.SwingPercent:
		return []Insight{{
			Type:    "danger",
			Message: fmt.Sprintf("Your spending went up %.1f%% compared to last month.", diff),
		}}, nil
	case diff < -r.cfg.SwingPercent:
		return []Insight{{
			Type:    "success",
			Message: fmt.Sprintf("Your spending dropped %.1f%% compared to last month.", -diff),
		}}, nil
	}
	return nil, nil
}

func (r *InsightReporter) balanceTrend(ctx context.Context, userID int64, now time.Time) ([]Insight, error) {
	window := aggregate.LastMonths(now, 3)
	start := window[0]

	incomes, err := r.src.ListTransactions(ctx, userID, core.KindIncome, start.Start(), monthEnd(now))
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	expenses, err := r.src.ListTransactions(ctx, userID, core.KindExpense, start.Start(), monthEnd(now))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	incomeSeries := aggregate.Series(aggregate.Monthly(incomes, start, 3))
	expenseSeries := aggregate.Series(aggregate.Monthly(expenses, start, 3))

	balances := make([]float64, 3)
	for i := range balances {
		balances[i] = incomeSeries[i] - expenseSeries[i]
	}

	switch {
	case balances[0] < balances[1] && balances[1] < balances[2]:
		return []Insight{{
			Type:    "success",
			Message: "Your balance has been trending up over the last months.",
		}}, nil
	case balances[0] > balances[1] && balances[1] > balances[2]:
		return []Insight{{
			Type:    "warning",
			Message: "Your balance has been trending down over the last months.",
		}}, nil
	}
	return nil, nil
}

func (r *InsightReporter) categorySpikes(ctx context.Context, userID int64, now time.Time) ([]Insight, error) {
	categories, err := r.cats.ListCategories(ctx, core.CategoryExpense)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	txs, err := r.src.ListTransactions(ctx, userID, core.KindExpense, beginningOfTime, now)
	if err != nil {
		return nil, fmt.Errorf("list expense history: %w", err)
	}

	monthStart := aggregate.MonthOf(now).Start()
	history := make(map[string][]float64)
	monthTotals := make(map[string]float64)
	for _, tx := range txs {
		history[tx.CategoryID] = append(history[tx.CategoryID], tx.Amount.InexactFloat64())
		if !tx.Date.Before(monthStart) {
			monthTotals[tx.CategoryID] += tx.Amount.InexactFloat64()
		}
	}

	var insights []Insight
	for _, cat := range categories {
		avg := stats.Mean(history[cat.ID])
		if avg == 0 {
			continue
		}
		if monthTotals[cat.ID] > avg*r.cfg.CategorySpikeMult {
			insights = append(insights, Insight{
				Type:    "warning",
				Message: fmt.Sprintf("You are spending well above your usual level in '%s'.", cat.Name),
			})
		}
	}
	return insights, nil
}

func (r *InsightReporter) incomeDrop(ctx context.Context, userID int64, now time.Time) ([]Insight, error) {
	current, previous, err := r.lastTwoMonthTotals(ctx, userID, core.KindIncome, now)
	if err != nil {
		return nil, err
	}
	if previous > 0 && current < previous*r.cfg.IncomeDropRatio {
		return []Insight{{
			Type:    "danger",
			Message: "Your income fell significantly compared to last month.",
		}}, nil
	}
	return nil, nil
}

// lastTwoMonthTotals returns (current month total, previous month total).
func (r *InsightReporter) lastTwoMonthTotals(ctx context.Context, userID int64, kind core.TransactionKind, now time.Time) (float64, float64, error) {
	window := aggregate.LastMonths(now, 2)
	start := window[0]
	txs, err := r.src.ListTransactions(ctx, userID, kind, start.Start(), monthEnd(now))
	if err != nil {
		return 0, 0, fmt.Errorf("list %s months: %w", kind, err)
	}
	series := aggregate.Series(aggregate.Monthly(txs, start, 2))
	return series[1], series[0], nil
}
