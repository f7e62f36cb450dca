// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"

	"github.com/okian/rally/internal/domain/ranking"
	"github.com/okian/rally/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Source locates the match log: a file path (.csv, .xlsx), an http(s)
	// URL of a CSV export, or sqlite://path?table=name.
	Source string `koanf:"source"`

	// DateLayout is the Go time layout of the date column.
	DateLayout string `koanf:"date_layout"`

	// TiePolicy decides tied matches: skip or second_player.
	TiePolicy string `koanf:"tie_policy"`

	// RefreshIntervalS is the snapshot TTL in seconds. Zero disables the ticker.
	RefreshIntervalS int `koanf:"refresh_interval_s"`

	// RefreshQueueSize bounds pending refresh requests.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// RefreshRatePerMin limits POST /refresh.
	RefreshRatePerMin int `koanf:"refresh_rate_per_min"`

	// FetchTimeoutS bounds a single load of the match log.
	FetchTimeoutS int `koanf:"fetch_timeout_s"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// Default values.
const (
	DefaultDateLayout = "02/01/2006"
	DefaultSource     = "matches.csv"
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           logger.FormatText,
		Addr:                ":9080",
		Source:              DefaultSource,
		DateLayout:          DefaultDateLayout,
		TiePolicy:           string(ranking.TieSkip),
		RefreshIntervalS:    600,
		RefreshQueueSize:    16,
		RefreshRatePerMin:   6,
		FetchTimeoutS:       30,
		MaxLeaderboardLimit: 100,
	}
}

// RefreshInterval returns the snapshot TTL.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalS) * time.Second
}

// FetchTimeout returns the per-load timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutS) * time.Second
}

// Policy returns the parsed tie policy.
func (c *Config) Policy() (ranking.TiePolicy, error) {
	p, err := ranking.ParseTiePolicy(c.TiePolicy)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return p, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Source == "":
		return fmt.Errorf("%w: source must not be empty", ErrInvalidConfig)
	case c.DateLayout == "":
		return fmt.Errorf("%w: date_layout must not be empty", ErrInvalidConfig)
	case c.LogFormat != logger.FormatText && c.LogFormat != logger.FormatJSON:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.RefreshIntervalS < 0:
		return fmt.Errorf("%w: refresh_interval_s must not be negative", ErrInvalidConfig)
	case c.RefreshQueueSize <= 0:
		return fmt.Errorf("%w: refresh_queue_size must be positive", ErrInvalidConfig)
	case c.RefreshRatePerMin <= 0:
		return fmt.Errorf("%w: refresh_rate_per_min must be positive", ErrInvalidConfig)
	case c.FetchTimeoutS <= 0:
		return fmt.Errorf("%w: fetch_timeout_s must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	_, err := c.Policy()
	return err
}
