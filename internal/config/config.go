// Package config provides configuration loading and validation for the
// pipeline worker and CLI. Values merge in order: defaults, then an
// optional JSON file, then environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/viral-factory/internal/errs"
)

// Config holds everything the worker needs to run.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. Empty runs the
	// worker on the in-memory store.
	DatabaseURL string `json:"database_url"`

	// GeminiAPIKey authenticates content generation calls.
	GeminiAPIKey string `json:"gemini_api_key"`

	// Environment selects connector fallback behavior.
	Environment string `json:"environment" validate:"oneof=development staging production"`

	// MinScore is the quality pass threshold.
	MinScore int `json:"min_score" validate:"gte=0,lte=100"`

	// MaxRegenAttempts bounds the rewrite loop per asset.
	MaxRegenAttempts int `json:"max_regen_attempts" validate:"gte=0,lte=10"`

	// Quiet hours window, "HH:MM" in UTC. Equal bounds disable it.
	QuietHoursStart string `json:"quiet_hours_start" validate:"required"`
	QuietHoursEnd   string `json:"quiet_hours_end" validate:"required"`

	// AutoPublishEnabled gates AUTO-mode dispatch globally.
	AutoPublishEnabled bool `json:"auto_publish_enabled"`

	// WebhookURL is the publish relay endpoint; empty disables it.
	WebhookURL string `json:"webhook_url" validate:"omitempty,url"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Environment:      "development",
		MinScore:         70,
		MaxRegenAttempts: 3,
		QuietHoursStart:  "23:00",
		QuietHoursEnd:    "07:00",
	}
}

// Load builds the effective configuration: defaults, overlaid with the
// JSON file at path when given, overlaid with environment variables.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) {
	setString := func(target *string, key string) {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.QuietHoursStart, "QUIET_HOURS_START")
	setString(&cfg.QuietHoursEnd, "QUIET_HOURS_END")
	setString(&cfg.WebhookURL, "PUBLISH_WEBHOOK_URL")

	if v := os.Getenv("MIN_SCORE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MinScore = n
		}
	}
	if v := os.Getenv("MAX_REGEN_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRegenAttempts = n
		}
	}
	if v := os.Getenv("AUTO_PUBLISH_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoPublishEnabled = b
		}
	}
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return &errs.ConfigurationError{
				Message: fmt.Sprintf("invalid config field %s (%s)", first.Field(), first.Tag()),
			}
		}
		return &errs.ConfigurationError{Message: err.Error()}
	}
	if c.Environment == "production" && c.GeminiAPIKey == "" {
		return &errs.ConfigurationError{Message: "GEMINI_API_KEY is required in production"}
	}
	return nil
}
