package analysis

import (
	"context"
	"fmt"
	"time"

	"finsight/internal/aggregate"
	"finsight/internal/core"
)

// Score levels.
const (
	ScoreCritical  ScoreLevel = "critical"
	ScoreBad       ScoreLevel = "bad"
	ScoreOK        ScoreLevel = "ok"
	ScoreGood      ScoreLevel = "good"
	ScoreExcellent ScoreLevel = "excellent"
)

type ScoreLevel string

// ScoreDetails are the metrics the composite score was derived from.
type ScoreDetails struct {
	SavingRate   float64 `json:"saving_rate"`
	ExpenseRatio float64 `json:"expense_ratio"`
	Trend        string  `json:"trend"` // up | down | stable
	Anomalies    int     `json:"anomalies"`
}

// ScoreReport is the composite 0-100 financial score for the current
// calendar year.
type ScoreReport struct {
	Score   int          `json:"score"`
	Level   ScoreLevel   `json:"level"`
	Details ScoreDetails `json:"details"`
}

type ScoreConfig struct {
	Now func() time.Time
}

// scoreMetrics is the snapshot the scoring rules adjust against.
type scoreMetrics struct {
	savingRate   float64
	expenseRatio float64
	trend        string
	anomalies    int
}

// scoreRule is one independent adjustment in the fixed-order rule list.
type scoreRule struct {
	name   string
	adjust func(m scoreMetrics) int
}

// scoreRules is the ordered adjustment list. Expense-ratio tiers are
// mutually exclusive so only the highest matching tier applies.
var scoreRules = []scoreRule{
	{name: "expense ratio above 90%", adjust: func(m scoreMetrics) int {
		if m.expenseRatio > 0.9 {
			return -30
		}
		return 0
	}},
	{name: "expense ratio above 80%", adjust: func(m scoreMetrics) int {
		if m.expenseRatio > 0.8 && m.expenseRatio <= 0.9 {
			return -20
		}
		return 0
	}},
	{name: "expense ratio above 70%", adjust: func(m scoreMetrics) int {
		if m.expenseRatio > 0.7 && m.expenseRatio <= 0.8 {
			return -10
		}
		return 0
	}},
	{name: "saving rate above 30%", adjust: func(m scoreMetrics) int {
		if m.savingRate > 30 {
			return 10
		}
		return 0
	}},
	{name: "saving rate above 20%", adjust: func(m scoreMetrics) int {
		if m.savingRate > 20 && m.savingRate <= 30 {
			return 5
		}
		return 0
	}},
	{name: "balance trending down", adjust: func(m scoreMetrics) int {
		if m.trend == "down" {
			return -10
		}
		return 0
	}},
	{name: "balance trending up", adjust: func(m scoreMetrics) int {
		if m.trend == "up" {
			return 5
		}
		return 0
	}},
	{name: "anomaly penalty", adjust: func(m scoreMetrics) int {
		return -5 * m.anomalies
	}},
}

// ScoreEngine blends savings rate, expense ratio, balance trend and anomaly
// count into a single 0-100 score.
type ScoreEngine struct {
	src       TransactionSource
	anomalies *AnomalyDetector
	cfg       ScoreConfig
}

func NewScoreEngine(src TransactionSource, anomalies *AnomalyDetector, cfg ScoreConfig) *ScoreEngine {
	cfg.Now = defaultNow(cfg.Now)
	return &ScoreEngine{src: src, anomalies: anomalies, cfg: cfg}
}

// Score computes the composite score over the current calendar year. A year
// with no income short-circuits to score 0 and level critical.
func (e *ScoreEngine) Score(ctx context.Context, userID int64) (ScoreReport, error) {
	now := e.cfg.Now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)

	incomes, err := e.src.ListTransactions(ctx, userID, core.KindIncome, yearStart, yearEnd)
	if err != nil {
		return ScoreReport{}, fmt.Errorf("list yearly incomes: %w", err)
	}
	expenses, err := e.src.ListTransactions(ctx, userID, core.KindExpense, yearStart, yearEnd)
	if err != nil {
		return ScoreReport{}, fmt.Errorf("list yearly expenses: %w", err)
	}

	totalIncome := sumAmounts(incomes)
	totalExpense := sumAmounts(expenses)

	if totalIncome <= 0 {
		return ScoreReport{
			Score: 0,
			Level: ScoreCritical,
			Details: ScoreDetails{
				SavingRate:   0,
				ExpenseRatio: 1,
				Trend:        "stable",
				Anomalies:    0,
			},
		}, nil
	}

	savingRate := (totalIncome - totalExpense) / totalIncome * 100
	if savingRate < 0 {
		savingRate = 0
	}

	trend, err := e.balanceTrend(ctx, userID, now)
	if err != nil {
		return ScoreReport{}, err
	}
	flagged, err := e.anomalies.Detect(ctx, userID)
	if err != nil {
		return ScoreReport{}, err
	}

	metrics := scoreMetrics{
		savingRate:   savingRate,
		expenseRatio: totalExpense / totalIncome,
		trend:        trend,
		anomalies:    len(flagged),
	}

	score := 100
	for _, rule := range scoreRules {
		score += rule.adjust(metrics)
	}
	score = clamp(score, 0, 100)

	return ScoreReport{
		Score: score,
		Level: scoreLevel(score),
		Details: ScoreDetails{
			SavingRate:   round2(metrics.savingRate),
			ExpenseRatio: round2(metrics.expenseRatio),
			Trend:        trend,
			Anomalies:    metrics.anomalies,
		},
	}, nil
}

// balanceTrend classifies the three most recent monthly balances: strictly
// increasing in chronological order is "up", strictly decreasing is "down",
// anything else is "stable".
func (e *ScoreEngine) balanceTrend(ctx context.Context, userID int64, now time.Time) (string, error) {
	window := aggregate.LastMonths(now, 3)
	start := window[0]

	incomes, err := e.src.ListTransactions(ctx, userID, core.KindIncome, start.Start(), monthEnd(now))
	if err != nil {
		return "", fmt.Errorf("list trend incomes: %w", err)
	}
	expenses, err := e.src.ListTransactions(ctx, userID, core.KindExpense, start.Start(), monthEnd(now))
	if err != nil {
		return "", fmt.Errorf("list trend expenses: %w", err)
	}

	incomeSeries := aggregate.Series(aggregate.Monthly(incomes, start, 3))
	expenseSeries := aggregate.Series(aggregate.Monthly(expenses, start, 3))

	balances := make([]float64, 3)
	for i := range balances {
		balances[i] = incomeSeries[i] - expenseSeries[i]
	}

	switch {
	case balances[0] < balances[1] && balances[1] < balances[2]:
		return "up", nil
	case balances[0] > balances[1] && balances[1] > balances[2]:
		return "down", nil
	default:
		return "stable", nil
	}
}

func scoreLevel(score int) ScoreLevel {
	switch {
	case score < 30:
		return ScoreCritical
	case score < 50:
		return ScoreBad
	case score < 70:
		return ScoreOK
	case score < 85:
		return ScoreGood
	default:
		return ScoreExcellent
	}
}
