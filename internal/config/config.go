// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from OCMS_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Page store backends
const (
	PageStoreSQLite = "sqlite"
	PageStoreRedis  = "redis"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"OCMS_DB_PATH" envDefault:"./data/ocms-pages.db"`
	SessionSecret string `env:"OCMS_SESSION_SECRET,required"`
	ServerHost    string `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"OCMS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"OCMS_ENV" envDefault:"development"`
	LogLevel      string `env:"OCMS_LOG_LEVEL" envDefault:"info"`

	// Languages pages may be written in
	UILanguages []string `env:"OCMS_UI_LANGUAGES" envDefault:"eng,fre,ger,spa" envSeparator:","`

	// Page store backend
	PageStore   string `env:"OCMS_PAGE_STORE" envDefault:"sqlite"`          // sqlite or redis
	RedisURL    string `env:"OCMS_REDIS_URL"`                               // Required when PageStore is redis
	RedisPrefix string `env:"OCMS_REDIS_PREFIX" envDefault:"ocms:pages:"` // Redis key prefix

	// Limits
	MaxUploadSize int64   `env:"OCMS_MAX_UPLOAD_SIZE" envDefault:"5242880"` // Bytes per uploaded document
	APIRateLimit  float64 `env:"OCMS_API_RATE_LIMIT" envDefault:"10"`       // Requests per second per IP
	APIRateBurst  int     `env:"OCMS_API_RATE_BURST" envDefault:"20"`

	// Seeding configuration
	DoSeed   bool `env:"OCMS_DO_SEED" envDefault:"false"`   // Create the default administrator
	DemoMode bool `env:"OCMS_DEMO_MODE" envDefault:"false"` // Also create demo accounts and pages
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisStore returns true if pages are kept in Redis.
func (c Config) UseRedisStore() bool {
	return c.PageStore == PageStoreRedis
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("OCMS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("OCMS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}
	if slices.Contains(knownWeakSecrets, c.SessionSecret) {
		return errors.New("OCMS_SESSION_SECRET is a known default value and must not be used; " +
			"generate a secure secret with: openssl rand -base64 32")
	}

	c.PageStore = strings.ToLower(strings.TrimSpace(c.PageStore))
	switch c.PageStore {
	case PageStoreSQLite:
	case PageStoreRedis:
		if c.RedisURL == "" {
			return errors.New("OCMS_REDIS_URL is required when OCMS_PAGE_STORE=redis")
		}
	default:
		return fmt.Errorf("OCMS_PAGE_STORE must be %q or %q, got %q",
			PageStoreSQLite, PageStoreRedis, c.PageStore)
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("OCMS_MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}
	if c.APIRateLimit <= 0 || c.APIRateBurst <= 0 {
		return errors.New("OCMS_API_RATE_LIMIT and OCMS_API_RATE_BURST must be positive")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
