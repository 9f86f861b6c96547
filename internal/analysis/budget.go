package analysis

import (
	"context"
	"fmt"
	"time"

	"finsight/internal/aggregate"
	"finsight/internal/core"
)

// Budget actions.
const (
	ActionReduce   BudgetAction = "reduce"
	ActionIncrease BudgetAction = "increase"
	ActionKeep     BudgetAction = "keep"
)

type BudgetAction string

// BudgetSuggestion is the reallocation proposal for one expense category.
type BudgetSuggestion struct {
	CategoryName string       `json:"category_name"`
	Current      float64      `json:"current"`
	Suggested    float64      `json:"suggested"`
	Difference   float64      `json:"difference"`
	Action       BudgetAction `json:"action"`
}

// BudgetPlan is the full reallocation proposal. EstimatedSaving may be
// negative when increases outweigh reductions.
type BudgetPlan struct {
	TotalCurrentExpense   float64            `json:"total_current_expense"`
	TotalSuggestedExpense float64            `json:"total_suggested_expense"`
	EstimatedSaving       float64            `json:"estimated_saving"`
	Suggestions           []BudgetSuggestion `json:"suggestions"`
}

// BudgetConfig carries the reallocation heuristics: no category should hold
// more than MaxShare of total spend, and categories under MinShare are
// assumed safe to grow by IncreaseFactor.
type BudgetConfig struct {
	MaxShare       float64 // default 0.30
	MinShare       float64 // default 0.05
	IncreaseFactor float64 // default 1.10
	Now            func() time.Time
}

func (c BudgetConfig) withDefaults() BudgetConfig {
	if c.MaxShare <= 0 {
		c.MaxShare = 0.30
	}
	if c.MinShare <= 0 {
		c.MinShare = 0.05
	}
	if c.IncreaseFactor <= 0 {
		c.IncreaseFactor = 1.10
	}
	c.Now = defaultNow(c.Now)
	return c
}

// BudgetOptimizer suggests capping outsized expense categories and growing
// negligible ones.
type BudgetOptimizer struct {
	src  TransactionSource
	cats CategorySource
	cfg  BudgetConfig
}

func NewBudgetOptimizer(src TransactionSource, cats CategorySource, cfg BudgetConfig) *BudgetOptimizer {
	return &BudgetOptimizer{src: src, cats: cats, cfg: cfg.withDefaults()}
}

// Optimize computes each expense category's share of total historical spend
// and proposes a cap, an increase or no change per category.
func (o *BudgetOptimizer) Optimize(ctx context.Context, userID int64) (BudgetPlan, error) {
	categories, err := o.cats.ListCategories(ctx, core.CategoryExpense)
	if err != nil {
		return BudgetPlan{}, fmt.Errorf("list expense categories: %w", err)
	}
	if len(categories) == 0 {
		return BudgetPlan{}, nil
	}

	txs, err := o.src.ListTransactions(ctx, userID, core.KindExpense, beginningOfTime, o.cfg.Now())
	if err != nil {
		return BudgetPlan{}, fmt.Errorf("list expenses: %w", err)
	}
	totals := aggregate.TotalsByCategory(txs)

	var totalExpense float64
	currents := make([]float64, len(categories))
	for i, cat := range categories {
		currents[i] = totals[cat.ID].InexactFloat64()
		totalExpense += currents[i]
	}

	plan := BudgetPlan{Suggestions: make([]BudgetSuggestion, 0, len(categories))}
	var newTotal float64
	for i, cat := range categories {
		current := currents[i]
		share := 0.0
		if totalExpense > 0 {
			share = current / totalExpense
		}

		suggested := current
		action := ActionKeep
		switch {
		case share > o.cfg.MaxShare:
			suggested = totalExpense * o.cfg.MaxShare
			action = ActionReduce
		case share < o.cfg.MinShare:
			suggested = current * o.cfg.IncreaseFactor
			action = ActionIncrease
		}

		suggested = round2(suggested)
		newTotal += suggested
		plan.Suggestions = append(plan.Suggestions, BudgetSuggestion{
			CategoryName: cat.Name,
			Current:      round2(current),
			Suggested:    suggested,
			Difference:   round2(suggested - current),
			Action:       action,
		})
	}

	plan.TotalCurrentExpense = round2(totalExpense)
	plan.TotalSuggestedExpense = round2(newTotal)
	plan.EstimatedSaving = round2(totalExpense - newTotal)
	return plan, nil
}
