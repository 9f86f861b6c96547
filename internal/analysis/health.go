package analysis

import (
	"context"
	"fmt"
	"time"

	"finsight/internal/core"
	"finsight/internal/stats"
)

// Health statuses.
const (
	HealthHealthy   HealthStatus = "healthy"
	HealthAttention HealthStatus = "attention"
	HealthCritical  HealthStatus = "critical"
)

type HealthStatus string

// HealthConfig controls the evaluation window and rule thresholds.
type HealthConfig struct {
	WindowDays      int     // trailing window, default 180
	ControlledRatio float64 // expense/income ratio considered controlled, default 0.7
	HighRatio       float64 // ratio considered dangerous, default 0.9
	MaxTransactions int     // expense count signaling sprawl, default 100
	Now             func() time.Time
}

func (c HealthConfig) withDefaults() HealthConfig {
	if c.WindowDays <= 0 {
		c.WindowDays = 180
	}
	if c.ControlledRatio <= 0 {
		c.ControlledRatio = 0.7
	}
	if c.HighRatio <= 0 {
		c.HighRatio = 0.9
	}
	if c.MaxTransactions <= 0 {
		c.MaxTransactions = 100
	}
	c.Now = defaultNow(c.Now)
	return c
}

// HealthReport is the rule-based 0-100 health evaluation. The string lists
// are never empty; a neutral placeholder fills in when no rule contributed.
type HealthReport struct {
	Score           int          `json:"score"`
	Status          HealthStatus `json:"status"`
	Summary         string       `json:"summary"`
	Positives       []string     `json:"positives"`
	Alerts          []string     `json:"alerts"`
	Recommendations []string     `json:"recommendations"`
}

// healthFacts is the aggregate snapshot the rules are evaluated against.
type healthFacts struct {
	income           float64
	expense          float64
	expenseCount     int
	incomeCount      int
	incomeCategories int
}

// healthRule inspects the snapshot, optionally appends findings to the
// report, and returns its score adjustment. Rules run in a fixed order and
// are independent of each other.
type healthRule func(f healthFacts, cfg HealthConfig, r *HealthReport) int

// HealthEvaluator scores the trailing window with an ordered list of rules
// starting from a neutral base of 50.
type HealthEvaluator struct {
	src   TransactionSource
	cfg   HealthConfig
	rules []healthRule
}

func NewHealthEvaluator(src TransactionSource, cfg HealthConfig) *HealthEvaluator {
	return &HealthEvaluator{
		src: src,
		cfg: cfg.withDefaults(),
		rules: []healthRule{
			profitRule,
			spendRatioRule,
			expenseSprawlRule,
			incomeConcentrationRule,
		},
	}
}

// Evaluate computes the health report over the trailing window.
func (e *HealthEvaluator) Evaluate(ctx context.Context, userID int64) (HealthReport, error) {
	now := e.cfg.Now()
	from := now.AddDate(0, 0, -e.cfg.WindowDays)

	expenses, err := e.src.ListTransactions(ctx, userID, core.KindExpense, from, now)
	if err != nil {
		return HealthReport{}, fmt.Errorf("list expenses: %w", err)
	}
	incomes, err := e.src.ListTransactions(ctx, userID, core.KindIncome, from, now)
	if err != nil {
		return HealthReport{}, fmt.Errorf("list incomes: %w", err)
	}

	incomeCategories := make(map[string]struct{})
	for _, tx := range incomes {
		incomeCategories[tx.CategoryID] = struct{}{}
	}

	facts := healthFacts{
		income:           sumAmounts(incomes),
		expense:          sumAmounts(expenses),
		expenseCount:     len(expenses),
		incomeCount:      len(incomes),
		incomeCategories: len(incomeCategories),
	}

	report := HealthReport{}
	score := 50
	for _, rule := range e.rules {
		score += rule(facts, e.cfg, &report)
	}
	report.Score = clamp(score, 0, 100)

	switch {
	case report.Score >= 75:
		report.Status = HealthHealthy
		report.Summary = "Your financial health is in great shape."
	case report.Score >= 45:
		report.Status = HealthAttention
		report.Summary = "Your financial health needs attention."
	default:
		report.Status = HealthCritical
		report.Summary = "Your financial situation is worrying."
	}

	if len(report.Positives) == 0 {
		report.Positives = append(report.Positives, "No notable positive indicators in this period.")
	}
	if len(report.Alerts) == 0 {
		report.Alerts = append(report.Alerts, "No critical alerts identified.")
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = append(report.Recommendations, "Keep up your current financial habits.")
	}
	return report, nil
}

// profitRule rewards a positive window balance and penalizes a deficit.
func profitRule(f healthFacts, _ HealthConfig, r *HealthReport) int {
	if f.income > f.expense {
		r.Positives = append(r.Positives, "You have been operating at a profit over the last months.")
		return 20
	}
	r.Alerts = append(r.Alerts, "You are spending more than you earn.")
	r.Recommendations = append(r.Recommendations, "Cut expenses or raise income immediately.")
	return -30
}

// spendRatioRule grades the expense/income ratio. It is skipped entirely
// when the window has no income.
func spendRatioRule(f healthFacts, cfg HealthConfig, r *HealthReport) int {
	if f.income <= 0 {
		return 0
	}
	ratio := stats.Ratio(f.expense, f.income)
	switch {
	case ratio < cfg.ControlledRatio:
		r.Positives = append(r.Positives, "Your spending level is well under control.")
		return 10
	case ratio < cfg.HighRatio:
		r.Alerts = append(r.Alerts, "Your spending is high relative to your income.")
		r.Recommendations = append(r.Recommendations, "Try to reduce fixed expenses.")
		return 0
	default:
		r.Alerts = append(r.Alerts, "Your spending is dangerously close to or above your income.")
		r.Recommendations = append(r.Recommendations, "Cut costs urgently.")
		return -20
	}
}

// expenseSprawlRule flags an unusually high number of expense records.
func expenseSprawlRule(f healthFacts, cfg HealthConfig, r *HealthReport) int {
	if f.expenseCount <= cfg.MaxTransactions {
		return 0
	}
	r.Alerts = append(r.Alerts, "You have a very large number of recurring expenses.")
	r.Recommendations = append(r.Recommendations, "Review and eliminate unnecessary expenses.")
	return -10
}

// incomeConcentrationRule flags dependence on a single income category.
func incomeConcentrationRule(f healthFacts, _ HealthConfig, r *HealthReport) int {
	if f.incomeCount == 0 || f.incomeCategories > 1 {
		return 0
	}
	r.Alerts = append(r.Alerts, "You depend on a single source of income.")
	r.Recommendations = append(r.Recommendations, "Diversify your income sources.")
	return -10
}

func sumAmounts(txs []core.Transaction) float64 {
	var total float64
	for _, tx := range txs {
		total += tx.Amount.InexactFloat64()
	}
	return total
}
