package analysis

import (
	"context"
	"fmt"

	"finsight/internal/core"
	"finsight/internal/log"
)

// AlertFeed is the consolidated output of every engine. No deduplication is
// performed: the same underlying issue may surface from several engines.
type AlertFeed struct {
	Alerts  []core.Alert `json:"alerts"`
	Summary string       `json:"summary"`
}

// AlertConfig carries the thresholds at which engine results become alerts.
type AlertConfig struct {
	Horizon       int // forecast/debt-risk horizon in months, default 6
	CriticalScore int // score below which the alert is critical, default 40
	WarningScore  int // score below which the alert warns, default 65
}

func (c AlertConfig) withDefaults() AlertConfig {
	if c.Horizon <= 0 {
		c.Horizon = 6
	}
	if c.CriticalScore <= 0 {
		c.CriticalScore = 40
	}
	if c.WarningScore <= 0 {
		c.WarningScore = 65
	}
	return c
}

// AlertAggregator runs every upstream engine, converts threshold crossings
// into leveled alerts and appends each alert to history when a recorder is
// configured. A failed append is logged and never aborts the remaining
// alerts or the response.
type AlertAggregator struct {
	health   *HealthEvaluator
	score    *ScoreEngine
	risk     *RiskClassifier
	forecast *ForecastEngine
	budget   *BudgetOptimizer
	category *CategoryAlertAnalyzer
	goals    *CategoryGoalAnalyzer
	recorder AlertRecorder // optional
	logger   *log.Logger
	cfg      AlertConfig
}

func NewAlertAggregator(
	health *HealthEvaluator,
	score *ScoreEngine,
	risk *RiskClassifier,
	forecast *ForecastEngine,
	budget *BudgetOptimizer,
	category *CategoryAlertAnalyzer,
	goals *CategoryGoalAnalyzer,
	recorder AlertRecorder,
	logger *log.Logger,
	cfg AlertConfig,
) *AlertAggregator {
	return &AlertAggregator{
		health:   health,
		score:    score,
		risk:     risk,
		forecast: forecast,
		budget:   budget,
		category: category,
		goals:    goals,
		recorder: recorder,
		logger:   logger,
		cfg:      cfg.withDefaults(),
	}
}

// Generate builds the consolidated alert feed for one owner.
func (a *AlertAggregator) Generate(ctx context.Context, userID int64) (AlertFeed, error) {
	var alerts []core.Alert

	health, err := a.health.Evaluate(ctx, userID)
	if err != nil {
		return AlertFeed{}, fmt.Errorf("evaluate health: %w", err)
	}
	switch health.Status {
	case HealthCritical:
		alerts = append(alerts, core.Alert{
			Level:   core.LevelCritical,
			Title:   "Critical financial health",
			Message: "Your spending level is seriously compromising your financial stability.",
		})
	case HealthAttention:
		alerts = append(alerts, core.Alert{
			Level:   core.LevelWarning,
			Title:   "Financial health at risk",
			Message: "Your spending is very close to or above your income.",
		})
	}

	score, err := a.score.Score(ctx, userID)
	if err != nil {
		return AlertFeed{}, fmt.Errorf("compute score: %w", err)
	}
	switch {
	case score.Score < a.cfg.CriticalScore:
		alerts = append(alerts, core.Alert{
			Level:   core.LevelCritical,
			Title:   "Very low financial score",
			Message: "Your financial profile is at high risk of collapse.",
		})
	case score.Score < a.cfg.WarningScore:
		alerts = append(alerts, core.Alert{
			Level:   core.LevelWarning,
			Title:   "Low financial score",
			Message: "Your financial situation needs urgent adjustments.",
		})
	}

	risk, err := a.risk.Classify(ctx, userID, a.cfg.Horizon)
	if err != nil {
		return AlertFeed{}, fmt.Errorf("classify debt risk: %w", err)
	}
	switch risk.RiskLevel {
	case RiskCriticalLV, RiskHigh:
		alerts = append(alerts, core.Alert{
			Level:   core.LevelCritical,
			Title:   "High risk of future debt",
			Message: "You will likely run into a financial deficit in the coming months.",
		})
	case RiskMedium:
		alerts = append(alerts, core.Alert{
			Level:   core.LevelWarning,
			Title:   "Moderate risk of future debt",
			Message: "At this pace your balance may turn negative.",
		})
	}

	forecast, err := a.forecast.Forecast(ctx, userID, a.cfg.Horizon)
	if err != nil {
		return AlertFeed{}, fmt.Errorf("generate forecast: %w", err)
	}
	switch forecast.RiskLevel {
	case RiskCritical:
		alerts = append(alerts, core.Alert{
			Level:   core.LevelCritical,
			Title:   "Critical financial forecast",
			Message: "Your projected balance will soon turn negative.",
		})
	case RiskWarning:
		alerts = append(alerts, core.Alert{
			Level:   core.LevelWarning,
			Title:   "Worrying financial forecast",
			Message: "Your financial safety margin is very low.",
		})
	}

	budget, err := a.budget.Optimize(ctx, userID)
	if err != nil {
		return AlertFeed{}, fmt.Errorf("optimize budget: %w", err)
	}
	if budget.EstimatedSaving > 0 {
		alerts = append(alerts, core.Alert{
			Level:   core.LevelInfo,
			Title:   "Budget optimization opportunity",
			Message: fmt.Sprintf("You could save up to %.2f per month.", budget.EstimatedSaving),
		})
	}

	categoryAlerts, err := a.category.Analyze(ctx, userID)
	if err != nil {
		return AlertFeed{}, fmt.Errorf("analyze category spending: %w", err)
	}
	alerts = append(alerts, categoryAlerts...)

	goalAlerts, err := a.goals.Analyze(ctx, userID)
	if err != nil {
		return AlertFeed{}, fmt.Errorf("analyze category goals: %w", err)
	}
	alerts = append(alerts, goalAlerts...)

	a.persist(ctx, userID, alerts)

	return AlertFeed{Alerts: alerts, Summary: summarize(alerts)}, nil
}

// persist appends each alert to history, tolerating per-item failures.
func (a *AlertAggregator) persist(ctx context.Context, userID int64, alerts []core.Alert) {
	if a.recorder == nil {
		return
	}
	for _, alert := range alerts {
		if err := a.recorder.RecordAlert(ctx, userID, alert); err != nil {
			a.logger.Error("failed to record alert history entry",
				log.FieldUserID, userID,
				log.FieldAlertLevel, string(alert.Level),
				log.FieldAlertTitle, alert.Title,
				log.FieldError, err)
		}
	}
}

func summarize(alerts []core.Alert) string {
	if len(alerts) == 0 {
		return "Your finances are stable. No critical alerts right now."
	}
	var criticals, warnings, infos int
	for _, alert := range alerts {
		switch alert.Level {
		case core.LevelCritical:
			criticals++
		case core.LevelWarning:
			warnings++
		default:
			infos++
		}
	}
	return fmt.Sprintf("%d critical alerts, %d warnings and %d informational alerts detected.",
		criticals, warnings, infos)
}
