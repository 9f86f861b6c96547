package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DataBackend:           "sqlite",
		SQLiteDBPath:          "./test.db",
		AnomalyThreshold:      2.0,
		AnomalyMinHistory:     5,
		AnomalyRecentWindow:   3,
		AnomalyPolicy:         "per-category",
		ForecastHistoryMonths: 12,
		DefaultHorizonMonths:  6,
		HealthWindowDays:      180,
		ReportCacheSize:       64,
		ReportCacheTTL:        time.Minute,
		AlertInterval:         time.Hour,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:        "invalid backend",
			mutate:      func(c *Config) { c.DataBackend = "postgres" },
			wantErr:     true,
			errorString: "invalid data backend 'postgres'",
		},
		{
			name: "sqlite backend without path",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name:        "negative anomaly threshold",
			mutate:      func(c *Config) { c.AnomalyThreshold = -1 },
			wantErr:     true,
			errorString: "invalid anomaly threshold",
		},
		{
			name:        "unknown anomaly policy",
			mutate:      func(c *Config) { c.AnomalyPolicy = "median" },
			wantErr:     true,
			errorString: "invalid anomaly policy 'median'",
		},
		{
			name:        "horizon above bound",
			mutate:      func(c *Config) { c.DefaultHorizonMonths = 48 },
			wantErr:     true,
			errorString: "must be between 1 and 36 months",
		},
		{
			name:        "cache TTL too small",
			mutate:      func(c *Config) { c.ReportCacheTTL = time.Millisecond },
			wantErr:     true,
			errorString: "invalid report cache TTL",
		},
		{
			name:        "alert interval too small",
			mutate:      func(c *Config) { c.AlertInterval = time.Second },
			wantErr:     true,
			errorString: "invalid alert interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate() expected error containing %q, got nil", tt.errorString)
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Validate() error = %v, want substring %q", err, tt.errorString)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.AnomalyThreshold != 2.0 {
		t.Errorf("default anomaly threshold = %v, want 2.0", cfg.AnomalyThreshold)
	}
	if cfg.DefaultHorizonMonths != 6 {
		t.Errorf("default horizon = %d, want 6", cfg.DefaultHorizonMonths)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got: %v", err)
	}
}
