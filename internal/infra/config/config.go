package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all process-level configuration. Subscriptions live in a separate
// file that is re-read on every scheduler tick (see FileSource).
type AppConfig struct {
	TelegramToken     string
	DatabaseURL       string // optional; empty keeps the run ledger in memory
	AdminTelegramID   int64
	LogLevel          string
	Environment       string
	Debug             bool
	Location          *time.Location
	SubscriptionsFile string
	ScratchDir        string
	FanoutInterval    time.Duration
	HealthInterval    time.Duration
	JanitorInterval   time.Duration
	PacingDelay       time.Duration
	SendRatePerSec    int

	// Credentials for the weather data providers.
	OpenUVAPIKey       string
	WeatherstackAPIKey string
	UserAgent          string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	if raw := os.Getenv("DEBUG"); raw != "" {
		cfg.Debug, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DEBUG: %w", err)
		}
	}

	cfg.Location = time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		cfg.Location, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
	}

	cfg.SubscriptionsFile = os.Getenv("SUBSCRIPTIONS_FILE")
	if cfg.SubscriptionsFile == "" {
		cfg.SubscriptionsFile = "subscriptions.yaml"
	}

	cfg.ScratchDir = os.Getenv("SCRATCH_DIR")
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = "tmp"
	}

	if cfg.FanoutInterval, err = durationEnv("FANOUT_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.HealthInterval, err = durationEnv("HEALTH_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.JanitorInterval, err = durationEnv("JANITOR_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PacingDelay, err = durationEnv("PACING_DELAY", 3*time.Second); err != nil {
		return nil, err
	}

	cfg.SendRatePerSec = 25 // Telegram allows ~30 messages per second per bot
	if raw := os.Getenv("SEND_RATE_PER_SEC"); raw != "" {
		cfg.SendRatePerSec, err = strconv.Atoi(raw)
		if err != nil || cfg.SendRatePerSec <= 0 {
			return nil, fmt.Errorf("invalid SEND_RATE_PER_SEC %q", raw)
		}
	}

	cfg.OpenUVAPIKey = os.Getenv("OPENUV_API_KEY")
	cfg.WeatherstackAPIKey = os.Getenv("WEATHERSTACK_API_KEY")
	cfg.UserAgent = os.Getenv("USER_AGENT")
	if cfg.UserAgent == "" {
		cfg.UserAgent = "weather-notification-bot"
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
