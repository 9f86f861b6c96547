package analysis

import (
	"context"
	"fmt"
	"time"

	"finsight/internal/aggregate"
	"finsight/internal/core"
	"finsight/internal/stats"
)

// Slope estimates a per-month rate of change from the trailing six points of
// a monthly series: the average of the recent three-point half minus the
// average of the older half, spread over three months. Fewer than six points
// yields 0. This is a deliberate two-window slope, not a regression.
func Slope(series []float64) float64 {
	if len(series) < 6 {
		return 0
	}
	tail := series[len(series)-6:]
	older := stats.Mean(tail[:3])
	recent := stats.Mean(tail[3:])
	return (recent - older) / 3
}

// TrendConfig controls the per-category trend report.
type TrendConfig struct {
	Months int // series length, default 6
	Now    func() time.Time
}

func (c TrendConfig) withDefaults() TrendConfig {
	if c.Months <= 0 {
		c.Months = 6
	}
	c.Now = defaultNow(c.Now)
	return c
}

// CategoryTrend is the spending trajectory of one expense category.
type CategoryTrend struct {
	CategoryID          string    `json:"category_id"`
	CategoryName        string    `json:"category_name"`
	Series              []float64 `json:"series"`
	Trend               float64   `json:"trend"`
	Direction           string    `json:"direction"` // up | down | stable
	ProjectionNextMonth float64   `json:"projection_next_month"`
}

// TrendReporter builds per-category monthly series and a coarse direction for
// each expense category.
type TrendReporter struct {
	src  TransactionSource
	cats CategorySource
	cfg  TrendConfig
}

func NewTrendReporter(src TransactionSource, cats CategorySource, cfg TrendConfig) *TrendReporter {
	return &TrendReporter{src: src, cats: cats, cfg: cfg.withDefaults()}
}

// ExpenseTrends returns one trend per expense category over the trailing
// window ending at the current month. The trend value is the last-minus-first
// difference of the series; the projection adds a fraction of it to the last
// observed month.
func (r *TrendReporter) ExpenseTrends(ctx context.Context, userID int64) ([]CategoryTrend, error) {
	now := r.cfg.Now()
	window := aggregate.LastMonths(now, r.cfg.Months)
	start := window[0]

	categories, err := r.cats.ListCategories(ctx, core.CategoryExpense)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	txs, err := r.src.ListTransactions(ctx, userID, core.KindExpense, start.Start(), monthEnd(now))
	if err != nil {
		return nil, fmt.Errorf("list expense transactions: %w", err)
	}
	byCategory := aggregate.MonthlyByCategory(txs, start, r.cfg.Months)

	trends := make([]CategoryTrend, 0, len(categories))
	for _, cat := range categories {
		series := make([]float64, r.cfg.Months)
		if buckets, ok := byCategory[cat.ID]; ok {
			series = aggregate.Series(buckets)
		}

		trend := series[len(series)-1] - series[0]
		direction := "stable"
		if trend > 0 {
			direction = "up"
		} else if trend < 0 {
			direction = "down"
		}

		trends = append(trends, CategoryTrend{
			CategoryID:          cat.ID,
			CategoryName:        cat.Name,
			Series:              series,
			Trend:               round2(trend),
			Direction:           direction,
			ProjectionNextMonth: round2(series[len(series)-1] + trend/float64(len(series))),
		})
	}
	return trends, nil
}

// monthEnd returns the exclusive upper bound of the month containing t.
func monthEnd(t time.Time) time.Time {
	return aggregate.MonthOf(t).AddMonths(1).Start()
}
