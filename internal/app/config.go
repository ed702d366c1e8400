package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
// Nil or empty overrides leave the settings file values in place.
type Config struct {
	ConfigPaths []string // hcl files or directories

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	Period  *time.Duration
	Yield   *time.Duration
	FeedURL string

	RunFor time.Duration // zero runs until the context is cancelled
}

var (
	logLevels  = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}
	logFormats = map[string]struct{}{"text": {}, "json": {}}
)

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error

	if _, ok := logLevels[cfg.LogLevel]; !ok && cfg.LogLevel != "" {
		errs = append(errs, fmt.Errorf("unknown log level %q", cfg.LogLevel))
	}
	if _, ok := logFormats[cfg.LogFormat]; !ok && cfg.LogFormat != "" {
		errs = append(errs, fmt.Errorf("unknown log format %q", cfg.LogFormat))
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("healthcheck port must be between 0 and 65535, got %d", cfg.HealthcheckPort))
	}
	if cfg.Period != nil && *cfg.Period <= 0 {
		errs = append(errs, fmt.Errorf("period must be positive, got %v", *cfg.Period))
	}
	if cfg.RunFor < 0 {
		errs = append(errs, fmt.Errorf("run-for must not be negative, got %v", cfg.RunFor))
	}
	if cfg.Yield != nil && *cfg.Yield < 0 {
		errs = append(errs, fmt.Errorf("yield must not be negative, got %v", *cfg.Yield))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
