// internal/config/config.go

// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by every service binary. It is loaded
// once at startup and treated as immutable.
type Config struct {
	DatabaseURL string
	Port        string

	// OTLPEndpoint is the trace collector address. Empty disables tracing
	// export (spans become no-ops).
	OTLPEndpoint string

	// CommitAttempts bounds the rental service's optimistic retries before
	// a conflict is surfaced to the caller.
	CommitAttempts int

	// AuthRatePerMinute limits register/authenticate calls.
	AuthRatePerMinute int
	AuthRateBurst     int
}

// Load reads the environment, after loading an optional .env file. The
// database URL is required; everything else has a default.
func Load(defaultPort string) (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variable DATABASE_URL is not set")
	}

	cfg.Port = getEnv("PORT", defaultPort)
	cfg.OTLPEndpoint = os.Getenv("OTLP_ENDPOINT")
	cfg.CommitAttempts = getEnvInt("COMMIT_ATTEMPTS", 3)
	cfg.AuthRatePerMinute = getEnvInt("AUTH_RATE_PER_MINUTE", 5)
	cfg.AuthRateBurst = getEnvInt("AUTH_RATE_BURST", 5)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
