package analysis

import (
	"context"
)

// Debt-risk levels.
const (
	RiskLow        RiskLevel = "low"
	RiskMedium     RiskLevel = "medium"
	RiskHigh       RiskLevel = "high"
	RiskCriticalLV RiskLevel = "critical"
)

type RiskLevel string

// RiskAssessment is the debt-risk classification for one owner. The factor
// and recommendation lists are never empty.
type RiskAssessment struct {
	RiskLevel       RiskLevel `json:"risk_level"`
	Probability     float64   `json:"probability"`
	MainFactors     []string  `json:"main_factors"`
	Recommendations []string  `json:"recommendations"`
}

// RiskConfig carries the signal thresholds.
type RiskConfig struct {
	NegativeMonthsMin int     // forecast months below zero to trip the signal, default 3
	DeficitFloor      float64 // minimum projected balance considered a deep deficit, default -1000
	LowScore          int     // score below which the score signal fires, default 40
}

func (c RiskConfig) withDefaults() RiskConfig {
	if c.NegativeMonthsMin <= 0 {
		c.NegativeMonthsMin = 3
	}
	if c.DeficitFloor >= 0 {
		c.DeficitFloor = -1000
	}
	if c.LowScore <= 0 {
		c.LowScore = 40
	}
	return c
}

// riskFacts is the combined upstream evidence the signals inspect.
type riskFacts struct {
	negativeMonths int
	minBalance     float64
	hasProjections bool
	score          int
	healthStatus   HealthStatus
}

// riskSignal is one independent weak signal with a fixed point weight.
type riskSignal struct {
	weight         int
	holds          func(f riskFacts, cfg RiskConfig) bool
	factor         string
	recommendation string
}

var riskSignals = []riskSignal{
	{
		weight: 4,
		holds: func(f riskFacts, cfg RiskConfig) bool {
			return f.negativeMonths >= cfg.NegativeMonthsMin
		},
		factor:         "Multiple months with a negative balance in the forecast",
		recommendation: "Reduce fixed expenses immediately",
	},
	{
		weight: 2,
		holds: func(f riskFacts, cfg RiskConfig) bool {
			return f.hasProjections && f.minBalance < cfg.DeficitFloor
		},
		factor:         "A deep accumulated deficit is projected",
		recommendation: "Put together a financial recovery plan",
	},
	{
		weight: 3,
		holds: func(f riskFacts, cfg RiskConfig) bool {
			return f.score < cfg.LowScore
		},
		factor:         "Very low financial score",
		recommendation: "Avoid new debt and reorganize the budget",
	},
	{
		weight: 3,
		holds: func(f riskFacts, _ RiskConfig) bool {
			return f.healthStatus == HealthCritical
		},
		factor:         "Compromised financial health",
		recommendation: "Cut non-essential spending",
	},
}

// riskCutoffs maps accumulated points to a level and its fixed probability.
// The probability is a constant per level, not a computed value.
var riskCutoffs = []struct {
	minPoints   int
	level       RiskLevel
	probability float64
}{
	{minPoints: 8, level: RiskCriticalLV, probability: 0.9},
	{minPoints: 5, level: RiskHigh, probability: 0.7},
	{minPoints: 3, level: RiskMedium, probability: 0.4},
}

// riskLevelFor resolves accumulated points against the cutoff table. Each
// cutoff is inclusive: 3 points already reaches medium, 5 high, 8 critical.
func riskLevelFor(points int) (RiskLevel, float64) {
	for _, cutoff := range riskCutoffs {
		if points >= cutoff.minPoints {
			return cutoff.level, cutoff.probability
		}
	}
	return RiskLow, 0.15
}

// RiskClassifier combines the forecast, score and health engines into a
// discrete debt-risk level.
type RiskClassifier struct {
	forecast *ForecastEngine
	score    *ScoreEngine
	health   *HealthEvaluator
	cfg      RiskConfig
}

func NewRiskClassifier(forecast *ForecastEngine, score *ScoreEngine, health *HealthEvaluator, cfg RiskConfig) *RiskClassifier {
	return &RiskClassifier{
		forecast: forecast,
		score:    score,
		health:   health,
		cfg:      cfg.withDefaults(),
	}
}

// Classify runs the upstream engines over the given forecast horizon and
// accumulates risk points from each signal that holds.
func (c *RiskClassifier) Classify(ctx context.Context, userID int64, months int) (RiskAssessment, error) {
	forecast, err := c.forecast.Forecast(ctx, userID, months)
	if err != nil {
		return RiskAssessment{}, err
	}
	score, err := c.score.Score(ctx, userID)
	if err != nil {
		return RiskAssessment{}, err
	}
	health, err := c.health.Evaluate(ctx, userID)
	if err != nil {
		return RiskAssessment{}, err
	}

	facts := riskFacts{
		hasProjections: len(forecast.Projections) > 0,
		score:          score.Score,
		healthStatus:   health.Status,
	}
	for i, p := range forecast.Projections {
		if p.Balance < 0 {
			facts.negativeMonths++
		}
		if i == 0 || p.Balance < facts.minBalance {
			facts.minBalance = p.Balance
		}
	}

	assessment := RiskAssessment{}
	points := 0
	for _, signal := range riskSignals {
		if signal.holds(facts, c.cfg) {
			points += signal.weight
			assessment.MainFactors = append(assessment.MainFactors, signal.factor)
			assessment.Recommendations = append(assessment.Recommendations, signal.recommendation)
		}
	}

	assessment.RiskLevel, assessment.Probability = riskLevelFor(points)

	if len(assessment.MainFactors) == 0 {
		assessment.MainFactors = append(assessment.MainFactors, "Finances are currently stable")
		assessment.Recommendations = append(assessment.Recommendations, "Maintain your current financial controls")
	}
	return assessment, nil
}
