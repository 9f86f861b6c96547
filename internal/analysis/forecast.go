package analysis

import (
	"context"
	"fmt"
	"time"

	"finsight/internal/aggregate"
	"finsight/internal/core"
	"finsight/internal/stats"
)

// Risk tiers for a forecast run, ordered by severity.
const (
	RiskSafe     RiskTier = "safe"
	RiskWarning  RiskTier = "warning"
	RiskCritical RiskTier = "critical"
)

type RiskTier string

func (t RiskTier) severity() int {
	switch t {
	case RiskCritical:
		return 2
	case RiskWarning:
		return 1
	default:
		return 0
	}
}

// worseOf returns the more severe of two tiers.
func worseOf(a, b RiskTier) RiskTier {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// Projection is one future month of the forecast.
type Projection struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// tier rates a single projected month in isolation: negative balance is
// critical, a balance under lowMargin of that month's income is a warning.
func (p Projection) tier(lowMargin float64) RiskTier {
	switch {
	case p.Balance < 0:
		return RiskCritical
	case p.Balance < p.Income*lowMargin:
		return RiskWarning
	default:
		return RiskSafe
	}
}

// worstRisk folds monthly projections into the run-level risk: the worst tier
// seen across the horizon. Escalation is monotonic, so one negative month
// marks the whole run critical even if later months recover.
func worstRisk(projections []Projection, lowMargin float64) RiskTier {
	worst := RiskSafe
	for _, p := range projections {
		worst = worseOf(worst, p.tier(lowMargin))
	}
	return worst
}

// Forecast is the projected income, expense and balance for the requested
// horizon. RiskLevel reflects the worst month in the horizon, not the final
// one.
type Forecast struct {
	Projections []Projection `json:"projections"`
	RiskLevel   RiskTier     `json:"risk_level"`
}

// ForecastConfig controls the historical base window and the warning margin.
type ForecastConfig struct {
	HistoryMonths  int     // default 12
	LowMarginRatio float64 // balance-to-income ratio under which a month warns, default 0.1
	Now            func() time.Time
}

func (c ForecastConfig) withDefaults() ForecastConfig {
	if c.HistoryMonths <= 0 {
		c.HistoryMonths = 12
	}
	if c.LowMarginRatio <= 0 {
		c.LowMarginRatio = 0.1
	}
	c.Now = defaultNow(c.Now)
	return c
}

// ForecastEngine extrapolates monthly income and expense from historical
// averages plus a two-window trend slope.
type ForecastEngine struct {
	src TransactionSource
	cfg ForecastConfig
}

func NewForecastEngine(src TransactionSource, cfg ForecastConfig) *ForecastEngine {
	return &ForecastEngine{src: src, cfg: cfg.withDefaults()}
}

// LowMarginRatio exposes the configured warning margin so the scenario
// simulator can reapply the same risk policy.
func (e *ForecastEngine) LowMarginRatio() float64 {
	return e.cfg.LowMarginRatio
}

// Forecast projects the next months of income, expense and balance. The base
// is a zero-filled historical window ending at the current month; each future
// month i gets average + slope·i per side.
func (e *ForecastEngine) Forecast(ctx context.Context, userID int64, months int) (Forecast, error) {
	now := e.cfg.Now()
	incomes, err := e.historySeries(ctx, userID, core.KindIncome, now)
	if err != nil {
		return Forecast{}, err
	}
	expenses, err := e.historySeries(ctx, userID, core.KindExpense, now)
	if err != nil {
		return Forecast{}, err
	}

	avgIncome := stats.Mean(incomes)
	avgExpense := stats.Mean(expenses)
	incomeSlope := Slope(incomes)
	expenseSlope := Slope(expenses)

	current := aggregate.MonthOf(now)
	projections := make([]Projection, 0, months)
	for i := 1; i <= months; i++ {
		m := current.AddMonths(i)
		income := round2(avgIncome + incomeSlope*float64(i))
		expense := round2(avgExpense + expenseSlope*float64(i))
		projections = append(projections, Projection{
			Year:    m.Year,
			Month:   int(m.Month),
			Income:  income,
			Expense: expense,
			Balance: round2(income - expense),
		})
	}

	return Forecast{
		Projections: projections,
		RiskLevel:   worstRisk(projections, e.cfg.LowMarginRatio),
	}, nil
}

func (e *ForecastEngine) historySeries(ctx context.Context, userID int64, kind core.TransactionKind, now time.Time) ([]float64, error) {
	window := aggregate.LastMonths(now, e.cfg.HistoryMonths)
	start := window[0]
	txs, err := e.src.ListTransactions(ctx, userID, kind, start.Start(), monthEnd(now))
	if err != nil {
		return nil, fmt.Errorf("list %s history: %w", kind, err)
	}
	return aggregate.Series(aggregate.Monthly(txs, start, e.cfg.HistoryMonths)), nil
}
