package analysis

import (
	"context"
)

// ScenarioResult holds the baseline forecast next to the simulated one.
type ScenarioResult struct {
	Original      []Projection `json:"original"`
	Simulated     []Projection `json:"simulated"`
	OriginalRisk  RiskTier     `json:"original_risk"`
	SimulatedRisk RiskTier     `json:"simulated_risk"`
}

// ScenarioSimulator re-runs a forecast under uniform percentage deltas on
// income and expense.
type ScenarioSimulator struct {
	forecast *ForecastEngine
}

func NewScenarioSimulator(forecast *ForecastEngine) *ScenarioSimulator {
	return &ScenarioSimulator{forecast: forecast}
}

// Simulate scales every projected month by (1 + delta/100) per side,
// recomputes balances and reapplies the same sticky worst-case risk policy
// independently for the simulated series. Zero deltas reproduce the baseline
// exactly.
func (s *ScenarioSimulator) Simulate(ctx context.Context, userID int64, months int, incomeChangePct, expenseChangePct float64) (ScenarioResult, error) {
	baseline, err := s.forecast.Forecast(ctx, userID, months)
	if err != nil {
		return ScenarioResult{}, err
	}

	incomeMultiplier := 1 + incomeChangePct/100
	expenseMultiplier := 1 + expenseChangePct/100

	simulated := make([]Projection, len(baseline.Projections))
	for i, p := range baseline.Projections {
		income := p.Income * incomeMultiplier
		expense := p.Expense * expenseMultiplier
		simulated[i] = Projection{
			Year:    p.Year,
			Month:   p.Month,
			Income:  round2(income),
			Expense: round2(expense),
			Balance: round2(income - expense),
		}
	}

	return ScenarioResult{
		Original:      baseline.Projections,
		Simulated:     simulated,
		OriginalRisk:  baseline.RiskLevel,
		SimulatedRisk: worstRisk(simulated, s.forecast.LowMarginRatio()),
	}, nil
}
