package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsight/internal/analysis"
	"finsight/internal/config"
	"finsight/internal/log"
	"finsight/internal/reports"
	"finsight/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(slog.LevelInfo, log.ComponentWorker)
	logger.Info("Starting alert-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if len(cfg.AlertUserIDs) == 0 {
		logger.Error("No users configured - set ALERT_USER_IDS")
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", log.FieldError, err)
		}
	}()

	svc := reports.NewService(reports.Sources{
		Transactions: store,
		Categories:   store,
		Goals:        store,
		AlertHistory: store,
	}, reports.Config{
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// First sweep right away, then on every tick.
	sweep(ctx, svc, cfg.AlertUserIDs, logger)

	ticker := time.NewTicker(cfg.AlertInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received")
			return
		case <-ticker.C:
			sweep(ctx, svc, cfg.AlertUserIDs, logger)
		}
	}
}

// sweep generates the alert feed for every configured user. A failure for
// one user is logged and does not stop the others.
func sweep(ctx context.Context, svc *reports.Service, userIDs []int64, logger *log.Logger) {
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		feed, err := svc.Alerts(ctx, userID)
		if err != nil {
			logger.Error("Alert generation failed", log.FieldUserID, userID, log.FieldError, err)
			continue
		}
		logger.Info("Alert sweep complete",
			log.FieldUserID, userID,
			"alerts", len(feed.Alerts),
			log.FieldDuration, time.Since(start).Milliseconds(),
		)
	}
}
