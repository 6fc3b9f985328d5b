// Package config loads swotlab settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Environment string `envconfig:"SWOT_ENV" default:"production"`
	LogLevel    string `envconfig:"SWOT_LOG_LEVEL" default:"info"`

	DataDir string `envconfig:"SWOT_DATA_DIR" default:"./data"`
	Backend string `envconfig:"SWOT_BACKEND" default:"json"` // "json" or "sqlite"
	Port    int    `envconfig:"SWOT_PORT" default:"8080"`

	SessionTTL time.Duration `envconfig:"SWOT_SESSION_TTL" default:"24h"`

	// Token bucket applied per client IP to /api/auth/*
	AuthRateRPS   float64 `envconfig:"SWOT_AUTH_RATE_RPS" default:"5"`
	AuthRateBurst int     `envconfig:"SWOT_AUTH_RATE_BURST" default:"10"`

	FetchTimeout time.Duration `envconfig:"SWOT_FETCH_TIMEOUT" default:"10s"`
}

// Development reports whether human-readable console logging is wanted.
func (c *Config) Development() bool {
	return c.Environment == "development"
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Backend != "json" && cfg.Backend != "sqlite" {
		return nil, fmt.Errorf("loading config: SWOT_BACKEND must be json or sqlite, got %q", cfg.Backend)
	}
	return &cfg, nil
}
