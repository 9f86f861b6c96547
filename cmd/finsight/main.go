package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finsight/internal/analysis"
	"finsight/internal/config"
	"finsight/internal/log"
	"finsight/internal/reports"
	"finsight/internal/storage"
)

// fullReport is the combined output when no single report is requested.
type fullReport struct {
	Anomalies []analysis.Anomaly       `json:"anomalies"`
	Score     analysis.ScoreReport     `json:"score"`
	Health    analysis.HealthReport    `json:"health"`
	Forecast  analysis.Forecast        `json:"forecast"`
	DebtRisk  analysis.RiskAssessment  `json:"debt_risk"`
	Budget    analysis.BudgetPlan      `json:"budget"`
	Trends    []analysis.CategoryTrend `json:"trends"`
	Insights  []analysis.Insight       `json:"insights"`
	Alerts    analysis.AlertFeed       `json:"alerts"`
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	userID := flag.Int64("user", 0, "owner whose data is analyzed (required)")
	report := flag.String("report", "all", "report to run: all|anomalies|score|health|forecast|risk|budget|scenario|trends|insights|alerts")
	months := flag.Int("months", 0, "forecast horizon in months (default from config)")
	incomeChange := flag.Float64("income-change", 0, "scenario income change in percent")
	expenseChange := flag.Float64("expense-change", 0, "scenario expense change in percent")
	anomalyPolicy := flag.String("anomaly-policy", "", "anomaly policy override: per-category|global")
	flag.Parse()

	logger := log.New(slog.LevelInfo, log.ComponentApp)

	if *userID <= 0 {
		logger.Error("Missing required -user flag")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if *anomalyPolicy != "" {
		cfg.AnomalyPolicy = *anomalyPolicy
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	src, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open data backend", log.FieldError, err)
		os.Exit(1)
	}
	defer closeStore()

	svc := reports.NewService(src, reports.Config{
		AnomalyThreshold:      cfg.AnomalyThreshold,
		AnomalyMinHistory:     cfg.AnomalyMinHistory,
		AnomalyRecentWindow:   cfg.AnomalyRecentWindow,
		AnomalyPolicy:         analysis.AnomalyPolicy(cfg.AnomalyPolicy),
		ForecastHistoryMonths: cfg.ForecastHistoryMonths,
		DefaultHorizonMonths:  cfg.DefaultHorizonMonths,
		HealthWindowDays:      cfg.HealthWindowDays,
		CacheSize:             cfg.ReportCacheSize,
		CacheTTL:              cfg.ReportCacheTTL,
	}, logger)

	horizon := *months
	if horizon == 0 {
		horizon = svc.DefaultHorizon()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := run(ctx, svc, *report, *userID, horizon, *incomeChange, *expenseChange)
	if err != nil {
		logger.Error("Report failed", log.FieldReport, *report, log.FieldUserID, *userID, log.FieldError, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("Failed to encode output", log.FieldError, err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, logger *log.Logger) (reports.Sources, func(), error) {
	switch cfg.DataBackend {
	case "memory":
		store := storage.NewMemoryStore()
		return reports.Sources{
			Transactions: store,
			Categories:   store,
			Goals:        store,
			AlertHistory: store,
		}, func() {}, nil
	default:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return reports.Sources{}, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("SQLite store opened", "path", cfg.SQLiteDBPath)
		closeStore := func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close store", log.FieldError, err)
			}
		}
		return reports.Sources{
			Transactions: store,
			Categories:   store,
			Goals:        store,
			AlertHistory: store,
		}, closeStore, nil
	}
}

func run(ctx context.Context, svc *reports.Service, report string, userID int64, months int, incomePct, expensePct float64) (any, error) {
	switch report {
	case "all":
		return runAll(ctx, svc, userID, months)
	case "anomalies":
		return svc.Anomalies(ctx, userID)
	case "score":
		return svc.Score(ctx, userID)
	case "health":
		return svc.Health(ctx, userID)
	case "forecast":
		return svc.Forecast(ctx, userID, months)
	case "risk":
		return svc.DebtRisk(ctx, userID, months)
	case "budget":
		return svc.Budget(ctx, userID)
	case "scenario":
		return svc.Scenario(ctx, userID, months, incomePct, expensePct)
	case "trends":
		return svc.CategoryTrends(ctx, userID)
	case "insights":
		return svc.Insights(ctx, userID)
	case "alerts":
		return svc.Alerts(ctx, userID)
	default:
		return nil, fmt.Errorf("unknown report %q", report)
	}
}

// runAll fans the independent reports out concurrently; each goroutine
// writes a distinct field, so the only synchronization needed is the group
// wait itself.
func runAll(ctx context.Context, svc *reports.Service, userID int64, months int) (*fullReport, error) {
	var out fullReport

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Anomalies, err = svc.Anomalies(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Score, err = svc.Score(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Health, err = svc.Health(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Forecast, err = svc.Forecast(ctx, userID, months)
		return err
	})
	g.Go(func() (err error) {
		out.DebtRisk, err = svc.DebtRisk(ctx, userID, months)
		return err
	})
	g.Go(func() (err error) {
		out.Budget, err = svc.Budget(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Trends, err = svc.CategoryTrends(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Insights, err = svc.Insights(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Alerts, err = svc.Alerts(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
