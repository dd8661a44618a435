package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const defaultSchedulerInterval = 30 * time.Second

// Config holds all runtime configuration of the engine.
type Config struct {
	DatabaseURL       string
	SchedulerInterval time.Duration
}

// Load reads configuration from environment variables. A .env file is
// loaded first when present, which is convenient for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	interval := defaultSchedulerInterval
	if raw := os.Getenv("SCHEDULER_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL environment variable: %w", err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("SCHEDULER_INTERVAL must be positive, got %v", parsed)
		}
		interval = parsed
	}

	return &Config{
		DatabaseURL:       dbURL,
		SchedulerInterval: interval,
	}, nil
}
