// Package config loads engine thresholds and adapter settings from the
// environment. Every threshold the engines use is explicit configuration
// passed at construction; nothing lives in package-level defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Storage
	DataBackend  string // sqlite | memory
	SQLiteDBPath string

	// Anomaly detection
	AnomalyThreshold    float64
	AnomalyMinHistory   int
	AnomalyRecentWindow int
	AnomalyPolicy       string // per-category | global

	// Forecast
	ForecastHistoryMonths int
	DefaultHorizonMonths  int

	// Health
	HealthWindowDays int

	// Report cache
	ReportCacheSize int
	ReportCacheTTL  time.Duration

	// Alert worker
	AlertInterval time.Duration
	AlertUserIDs  []int64
}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finsight.db"),

		AnomalyThreshold:    getEnvFloat("ANOMALY_THRESHOLD", 2.0),
		AnomalyMinHistory:   getEnvInt("ANOMALY_MIN_HISTORY", 5),
		AnomalyRecentWindow: getEnvInt("ANOMALY_RECENT_WINDOW", 3),
		AnomalyPolicy:       getEnv("ANOMALY_POLICY", "per-category"),

		ForecastHistoryMonths: getEnvInt("FORECAST_HISTORY_MONTHS", 12),
		DefaultHorizonMonths:  getEnvInt("DEFAULT_HORIZON_MONTHS", 6),

		HealthWindowDays: getEnvInt("HEALTH_WINDOW_DAYS", 180),

		ReportCacheSize: getEnvInt("REPORT_CACHE_SIZE", 256),
		ReportCacheTTL:  getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),

		AlertInterval: getEnvDuration("ALERT_INTERVAL", time.Hour),
		AlertUserIDs:  getEnvInt64List("ALERT_USER_IDS"),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.DataBackend {
	case "sqlite", "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be 'sqlite' or 'memory'", c.DataBackend))
	}
	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.AnomalyThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("invalid anomaly threshold %v: must be positive", c.AnomalyThreshold))
	}
	if c.AnomalyMinHistory < 1 {
		errs = append(errs, fmt.Sprintf("invalid anomaly min history %d: must be at least 1", c.AnomalyMinHistory))
	}
	if c.AnomalyRecentWindow < 1 {
		errs = append(errs, fmt.Sprintf("invalid anomaly recent window %d: must be at least 1", c.AnomalyRecentWindow))
	}
	switch c.AnomalyPolicy {
	case "per-category", "global":
	default:
		errs = append(errs, fmt.Sprintf("invalid anomaly policy '%s': must be 'per-category' or 'global'", c.AnomalyPolicy))
	}

	if c.ForecastHistoryMonths < 1 || c.ForecastHistoryMonths > 120 {
		errs = append(errs, fmt.Sprintf("invalid forecast history %d: must be between 1 and 120 months", c.ForecastHistoryMonths))
	}
	if c.DefaultHorizonMonths < 1 || c.DefaultHorizonMonths > 36 {
		errs = append(errs, fmt.Sprintf("invalid default horizon %d: must be between 1 and 36 months", c.DefaultHorizonMonths))
	}

	if c.HealthWindowDays < 1 {
		errs = append(errs, fmt.Sprintf("invalid health window %d: must be at least 1 day", c.HealthWindowDays))
	}

	if c.ReportCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid report cache size %d: must be at least 1", c.ReportCacheSize))
	}
	if c.ReportCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid report cache TTL %v: must be at least 1 second", c.ReportCacheTTL))
	}

	if c.AlertInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid alert interval %v: must be at least 1 minute", c.AlertInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvInt64List(key string) []int64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
