package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken     string
	DatabaseURL       string
	LogLevel          string
	Environment       string
	CronSpecNotify    string // recurring birthday sweep, default every 4 hours
	CronSpecRetention string // recurring cleanup of stale disabled records
	RetentionDays     int    // disabled records older than this are purged
	NotifyConcurrency int    // upper bound on parallel notification attempts
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecNotify = os.Getenv("CRON_SPEC_NOTIFY")
	if cfg.CronSpecNotify == "" {
		cfg.CronSpecNotify = "@every 4h"
	}

	cfg.CronSpecRetention = os.Getenv("CRON_SPEC_RETENTION")
	if cfg.CronSpecRetention == "" {
		cfg.CronSpecRetention = "@every 24h"
	}

	var err error
	cfg.RetentionDays, err = intEnv("RETENTION_DAYS", 90)
	if err != nil {
		return nil, err
	}
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("RETENTION_DAYS must be positive, got %d", cfg.RetentionDays)
	}

	cfg.NotifyConcurrency, err = intEnv("NOTIFY_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}
	if cfg.NotifyConcurrency <= 0 {
		return nil, fmt.Errorf("NOTIFY_CONCURRENCY must be positive, got %d", cfg.NotifyConcurrency)
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
