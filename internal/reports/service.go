// Package reports is the surface exposed to collaborators: one method per
// report, all pure functions of (owner, parameters) over the underlying
// store. Parameter validation happens here, at the boundary, so the engines
// never see an out-of-range horizon.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finsight/internal/analysis"
	"finsight/internal/cache"
	"finsight/internal/log"
)

// Horizon bounds for forecast-shaped reports.
const (
	MinHorizonMonths = 1
	MaxHorizonMonths = 36
)

// ErrInvalidHorizon is returned when a requested horizon falls outside the
// supported bounds.
var ErrInvalidHorizon = errors.New("forecast horizon out of range")

// Sources are the collaborator ports the service reads from. AlertHistory
// may be nil; alerts are then generated without being persisted.
type Sources struct {
	Transactions analysis.TransactionSource
	Categories   analysis.CategorySource
	Goals        analysis.GoalSource
	AlertHistory analysis.AlertRecorder
}

// Config carries every tunable the engines need, plus cache sizing. Zero
// values fall back to the engine defaults.
type Config struct {
	AnomalyThreshold      float64
	AnomalyMinHistory     int
	AnomalyRecentWindow   int
	AnomalyPolicy         analysis.AnomalyPolicy
	ForecastHistoryMonths int
	DefaultHorizonMonths  int
	HealthWindowDays      int
	CacheSize             int
	CacheTTL              time.Duration
	Now                   func() time.Time
}

// Service wires the engines together and memoizes the two most frequently
// requested reports per owner.
type Service struct {
	anomalies *analysis.AnomalyDetector
	trends    *analysis.TrendReporter
	forecast  *analysis.ForecastEngine
	health    *analysis.HealthEvaluator
	score     *analysis.ScoreEngine
	risk      *analysis.RiskClassifier
	budget    *analysis.BudgetOptimizer
	scenario  *analysis.ScenarioSimulator
	insights  *analysis.InsightReporter
	alerts    *analysis.AlertAggregator

	forecastCache *cache.LRU[analysis.Forecast]
	scoreCache    *cache.LRU[analysis.ScoreReport]

	defaultHorizon int
	logger         *log.Logger
}

func NewService(src Sources, cfg Config, logger *log.Logger) *Service {
	if cfg.DefaultHorizonMonths < MinHorizonMonths || cfg.DefaultHorizonMonths > MaxHorizonMonths {
		cfg.DefaultHorizonMonths = 6
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	anomalies := analysis.NewAnomalyDetector(src.Transactions, analysis.AnomalyConfig{
		Threshold:    cfg.AnomalyThreshold,
		MinHistory:   cfg.AnomalyMinHistory,
		RecentWindow: cfg.AnomalyRecentWindow,
		Policy:       cfg.AnomalyPolicy,
		Now:          cfg.Now,
	})
	forecast := analysis.NewForecastEngine(src.Transactions, analysis.ForecastConfig{
		HistoryMonths: cfg.ForecastHistoryMonths,
		Now:           cfg.Now,
	})
	health := analysis.NewHealthEvaluator(src.Transactions, analysis.HealthConfig{
		WindowDays: cfg.HealthWindowDays,
		Now:        cfg.Now,
	})
	score := analysis.NewScoreEngine(src.Transactions, anomalies, analysis.ScoreConfig{Now: cfg.Now})
	risk := analysis.NewRiskClassifier(forecast, score, health, analysis.RiskConfig{})
	budget := analysis.NewBudgetOptimizer(src.Transactions, src.Categories, analysis.BudgetConfig{Now: cfg.Now})
	category := analysis.NewCategoryAlertAnalyzer(src.Transactions, src.Categories, analysis.CategoryAlertConfig{Now: cfg.Now})
	goals := analysis.NewCategoryGoalAnalyzer(src.Transactions, src.Goals, analysis.GoalAlertConfig{Now: cfg.Now})
	alerts := analysis.NewAlertAggregator(
		health, score, risk, forecast, budget, category, goals,
		src.AlertHistory,
		logger.WithComponent(log.ComponentAnalysis),
		analysis.AlertConfig{Horizon: cfg.DefaultHorizonMonths},
	)

	return &Service{
		anomalies: anomalies,
		trends:    analysis.NewTrendReporter(src.Transactions, src.Categories, analysis.TrendConfig{Now: cfg.Now}),
		forecast:  forecast,
		health:    health,
		score:     score,
		risk:      risk,
		budget:    budget,
		scenario:  analysis.NewScenarioSimulator(forecast),
		insights:  analysis.NewInsightReporter(src.Transactions, src.Categories, analysis.InsightConfig{Now: cfg.Now}),
		alerts:    alerts,

		forecastCache: cache.NewLRU[analysis.Forecast](cfg.CacheSize, cfg.CacheTTL),
		scoreCache:    cache.NewLRU[analysis.ScoreReport](cfg.CacheSize, cfg.CacheTTL),

		defaultHorizon: cfg.DefaultHorizonMonths,
		logger:         logger,
	}
}

// DefaultHorizon is the horizon used when a caller does not supply one.
func (s *Service) DefaultHorizon() int {
	return s.defaultHorizon
}

// Anomalies returns the flagged transactions across incomes and expenses.
func (s *Service) Anomalies(ctx context.Context, userID int64) ([]analysis.Anomaly, error) {
	return s.anomalies.Detect(ctx, userID)
}

// Score returns the composite financial score, memoized per owner.
func (s *Service) Score(ctx context.Context, userID int64) (analysis.ScoreReport, error) {
	key := fmt.Sprintf("score:%d", userID)
	if report, ok := s.scoreCache.Get(key); ok {
		return report, nil
	}
	report, err := s.score.Score(ctx, userID)
	if err != nil {
		return analysis.ScoreReport{}, err
	}
	s.scoreCache.Set(key, report)
	return report, nil
}

// Health returns the rule-based health evaluation.
func (s *Service) Health(ctx context.Context, userID int64) (analysis.HealthReport, error) {
	return s.health.Evaluate(ctx, userID)
}

// Forecast projects the requested number of future months, memoized per
// owner and horizon.
func (s *Service) Forecast(ctx context.Context, userID int64, months int) (analysis.Forecast, error) {
	if err := validateHorizon(months); err != nil {
		return analysis.Forecast{}, err
	}
	key := fmt.Sprintf("forecast:%d:%d", userID, months)
	if forecast, ok := s.forecastCache.Get(key); ok {
		return forecast, nil
	}
	forecast, err := s.forecast.Forecast(ctx, userID, months)
	if err != nil {
		return analysis.Forecast{}, err
	}
	s.forecastCache.Set(key, forecast)
	return forecast, nil
}

// DebtRisk classifies the owner's debt risk over the given horizon.
func (s *Service) DebtRisk(ctx context.Context, userID int64, months int) (analysis.RiskAssessment, error) {
	if err := validateHorizon(months); err != nil {
		return analysis.RiskAssessment{}, err
	}
	return s.risk.Classify(ctx, userID, months)
}

// Budget returns per-category reallocation suggestions.
func (s *Service) Budget(ctx context.Context, userID int64) (analysis.BudgetPlan, error) {
	return s.budget.Optimize(ctx, userID)
}

// Scenario simulates the forecast under income/expense percentage deltas.
func (s *Service) Scenario(ctx context.Context, userID int64, months int, incomeChangePct, expenseChangePct float64) (analysis.ScenarioResult, error) {
	if err := validateHorizon(months); err != nil {
		return analysis.ScenarioResult{}, err
	}
	return s.scenario.Simulate(ctx, userID, months, incomeChangePct, expenseChangePct)
}

// CategoryTrends returns the per-category spending trajectories.
func (s *Service) CategoryTrends(ctx context.Context, userID int64) ([]analysis.CategoryTrend, error) {
	return s.trends.ExpenseTrends(ctx, userID)
}

// Insights returns the narrative findings for the current month.
func (s *Service) Insights(ctx context.Context, userID int64) ([]analysis.Insight, error) {
	return s.insights.Insights(ctx, userID)
}

// Alerts generates the consolidated alert feed, persisting history entries
// when a recorder is configured.
func (s *Service) Alerts(ctx context.Context, userID int64) (analysis.AlertFeed, error) {
	return s.alerts.Generate(ctx, userID)
}

func validateHorizon(months int) error {
	if months < MinHorizonMonths || months > MaxHorizonMonths {
		return fmt.Errorf("%w: %d months, want %d-%d", ErrInvalidHorizon, months, MinHorizonMonths, MaxHorizonMonths)
	}
	return nil
}
