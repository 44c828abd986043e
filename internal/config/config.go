package config

import (
	"os"
	"strconv"
	"time"

	"github.com/igordot/SuMu/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	DataService DataServiceConfig
	Database    DatabaseConfig
	Analysis    AnalysisConfig
	Server      ServerConfig
	Paths       PathConfig
}

// DataServiceConfig holds settings for the external cohort data service
type DataServiceConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
}

// DatabaseConfig holds settings for the optional Postgres snapshot cache
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// AnalysisConfig holds model-fitting defaults
type AnalysisConfig struct {
	JoinPolicy     string // "left" or "inner"
	CellPolicy     string // "presence" or "count"
	OutcomeDays    float64
	Chains         int
	Iterations     int
	Seed           int64
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port string
}

// PathConfig holds file system paths
type PathConfig struct {
	ReportDir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		DataService: DataServiceConfig{
			BaseURL:       getEnv("SUMU_DATA_URL", "https://api.gdc.cancer.gov"),
			Timeout:       getDurationEnv("SUMU_DATA_TIMEOUT", 60*time.Second),
			RatePerMinute: getIntEnv("SUMU_DATA_RATE", 60),
		},
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			Enabled: os.Getenv("DATABASE_URL") != "",
		},
		Analysis: AnalysisConfig{
			JoinPolicy:  getEnv("SUMU_JOIN_POLICY", "left"),
			CellPolicy:  getEnv("SUMU_CELL_POLICY", "presence"),
			OutcomeDays: getFloatEnv("SUMU_OUTCOME_DAYS", 365),
			Chains:      getIntEnv("SUMU_CHAINS", 4),
			Iterations:  getIntEnv("SUMU_ITERATIONS", 2000),
			Seed:        int64(getIntEnv("SUMU_SEED", 101)),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Paths: PathConfig{
			ReportDir: getEnv("SUMU_REPORT_DIR", "reports"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DataService.BaseURL == "" {
		return errors.ConfigInvalid("SUMU_DATA_URL must not be empty")
	}
	switch c.Analysis.JoinPolicy {
	case "left", "inner":
	default:
		return errors.ConfigInvalid("SUMU_JOIN_POLICY must be 'left' or 'inner'")
	}
	switch c.Analysis.CellPolicy {
	case "presence", "count":
	default:
		return errors.ConfigInvalid("SUMU_CELL_POLICY must be 'presence' or 'count'")
	}
	if c.Analysis.Chains < 1 {
		return errors.ConfigInvalid("SUMU_CHAINS must be >= 1")
	}
	if c.Analysis.Iterations < 1 {
		return errors.ConfigInvalid("SUMU_ITERATIONS must be >= 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
