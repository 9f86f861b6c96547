package analysis

import (
	"context"
	"fmt"
	"time"

	"finsight/internal/aggregate"
	"finsight/internal/core"
	"finsight/internal/stats"
)

// CategoryAlertConfig controls the cross-category spending comparison.
type CategoryAlertConfig struct {
	Months         int     // trailing window in 30-day blocks, default 1
	WarnFactor     float64 // multiple of the cross-category average that warns, default 1.8
	CriticalFactor float64 // multiple that is critical, default 3.0
	Now            func() time.Time
}

func (c CategoryAlertConfig) withDefaults() CategoryAlertConfig {
	if c.Months <= 0 {
		c.Months = 1
	}
	if c.WarnFactor <= 0 {
		c.WarnFactor = 1.8
	}
	if c.CriticalFactor <= 0 {
		c.CriticalFactor = 3.0
	}
	c.Now = defaultNow(c.Now)
	return c
}

// CategoryAlertAnalyzer flags expense categories spending far above the
// average of the other categories.
type CategoryAlertAnalyzer struct {
	src  TransactionSource
	cats CategorySource
	cfg  CategoryAlertConfig
}

func NewCategoryAlertAnalyzer(src TransactionSource, cats CategorySource, cfg CategoryAlertConfig) *CategoryAlertAnalyzer {
	return &CategoryAlertAnalyzer{src: src, cats: cats, cfg: cfg.withDefaults()}
}

// Analyze compares each expense category's window total against the
// cross-category average. A category can produce both a warning and a
// critical alert when it crosses both factors.
func (a *CategoryAlertAnalyzer) Analyze(ctx context.Context, userID int64) ([]core.Alert, error) {
	now := a.cfg.Now()
	from := now.AddDate(0, 0, -30*a.cfg.Months)

	categories, err := a.cats.ListCategories(ctx, core.CategoryExpense)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, nil
	}

	txs, err := a.src.ListTransactions(ctx, userID, core.KindExpense, from, now)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	byCategory := aggregate.TotalsByCategory(txs)

	totals := make([]float64, len(categories))
	for i, cat := range categories {
		totals[i] = byCategory[cat.ID].InexactFloat64()
	}
	avg := stats.Mean(totals)

	var alerts []core.Alert
	for i, cat := range categories {
		total := totals[i]
		if total > avg*a.cfg.WarnFactor {
			alerts = append(alerts, core.Alert{
				Level:   core.LevelWarning,
				Title:   fmt.Sprintf("High spending in %s", cat.Name),
				Message: fmt.Sprintf("Your spending in '%s' is far above the average of your other categories.", cat.Name),
			})
		}
		if total > avg*a.cfg.CriticalFactor {
			alerts = append(alerts, core.Alert{
				Level:   core.LevelCritical,
				Title:   fmt.Sprintf("Critical spending in %s", cat.Name),
				Message: fmt.Sprintf("The '%s' category is seriously compromising your budget.", cat.Name),
			})
		}
	}
	return alerts, nil
}

// GoalAlertConfig controls goal progress alerts.
type GoalAlertConfig struct {
	WarnPercent float64 // goal consumption percentage that warns, default 85
	Now         func() time.Time
}

func (c GoalAlertConfig) withDefaults() GoalAlertConfig {
	if c.WarnPercent <= 0 {
		c.WarnPercent = 85
	}
	c.Now = defaultNow(c.Now)
	return c
}

// CategoryGoalAnalyzer checks month-to-date spending against per-category
// goals.
type CategoryGoalAnalyzer struct {
	src   TransactionSource
	goals GoalSource
	cfg   GoalAlertConfig
}

func NewCategoryGoalAnalyzer(src TransactionSource, goals GoalSource, cfg GoalAlertConfig) *CategoryGoalAnalyzer {
	return &CategoryGoalAnalyzer{src: src, goals: goals, cfg: cfg.withDefaults()}
}

// Analyze emits a critical alert for every goal already exceeded this month
// and a warning for goals close to their limit. Goals with a zero target
// never fire.
func (a *CategoryGoalAnalyzer) Analyze(ctx context.Context, userID int64) ([]core.Alert, error) {
	now := a.cfg.Now()
	monthStart := aggregate.MonthOf(now).Start()

	goals, err := a.goals.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	if len(goals) == 0 {
		return nil, nil
	}

	txs, err := a.src.ListTransactions(ctx, userID, core.KindExpense, monthStart, now)
	if err != nil {
		return nil, fmt.Errorf("list month expenses: %w", err)
	}
	spent := aggregate.TotalsByCategory(txs)

	var alerts []core.Alert
	for _, goal := range goals {
		target := goal.TargetAmount.InexactFloat64()
		if target <= 0 {
			continue
		}
		total := spent[goal.CategoryID].InexactFloat64()
		percent := total / target * 100

		switch {
		case percent >= 100:
			alerts = append(alerts, core.Alert{
				Level:   core.LevelCritical,
				Title:   fmt.Sprintf("Goal exceeded in %s", goal.CategoryName),
				Message: fmt.Sprintf("You have already spent %.2f, passing the goal of %.2f.", total, target),
			})
		case percent >= a.cfg.WarnPercent:
			alerts = append(alerts, core.Alert{
				Level:   core.LevelWarning,
				Title:   fmt.Sprintf("Goal almost reached in %s", goal.CategoryName),
				Message: fmt.Sprintf("You have spent %.2f, reaching %.0f%% of the %.2f goal.", total, percent, target),
			})
		}
	}
	return alerts, nil
}
