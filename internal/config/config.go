// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading honours context.Context as the first parameter.
// - Validation errors wrap this package's sentinel errors.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Client variants a host can compose.
const (
	ClientMemory    = "memory"
	ClientExtension = "extension"
	ClientREST      = "rest"
)

// Config contains process configuration for both the API server and the
// terminal host.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches the log handler to JSON records.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the API server listen address, e.g. ":8055".
	Addr string `koanf:"addr"`

	// DatabasePath is the sqlite file backing the API server.
	DatabasePath string `koanf:"database_path"`

	// TokenSecret signs bearer tokens issued by the API server.
	TokenSecret string `koanf:"token_secret"`

	// TokenTTL is the lifetime of issued bearer tokens.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// SeedEmail and SeedPassword create an account at server start when set.
	SeedEmail    string `koanf:"seed_email"`
	SeedPassword string `koanf:"seed_password"`

	// Client selects the host client variant: memory, extension or rest.
	Client string `koanf:"client"`

	// APIURL is the base URL of the configuration API for the rest variant
	// and for extension logins.
	APIURL string `koanf:"api_url"`

	// HTTPTimeout bounds each call made by the rest variant.
	HTTPTimeout time.Duration `koanf:"http_timeout"`

	// StoragePath is the sqlite file used for host key-value storage.
	// Empty keeps everything in memory.
	StoragePath string `koanf:"storage_path"`

	// HighContrast overrides the persisted accessibility preference when set.
	HighContrast *bool `koanf:"high_contrast"`

	// PrefersContrast is the environment's "more contrast" signal.
	PrefersContrast bool `koanf:"prefers_contrast"`

	// Wheel defaults handed out through the environment config.
	DefaultDuration float64 `koanf:"default_duration"`
	PrimaryColor    string  `koanf:"primary_color"`
	SecondaryColor  string  `koanf:"secondary_color"`
	ShowConfetti    bool    `koanf:"show_confetti"`

	// MinRevolutions and MaxRevolutions bound the full turns added per spin.
	MinRevolutions int `koanf:"min_revolutions"`
	MaxRevolutions int `koanf:"max_revolutions"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8055",
		DatabasePath:    "spinner.db",
		TokenTTL:        24 * time.Hour,
		Client:          ClientMemory,
		APIURL:          "http://localhost:8055",
		HTTPTimeout:     10 * time.Second,
		DefaultDuration: 5,
		PrimaryColor:    "#3B82F6",
		SecondaryColor:  "#F59E0B",
		ShowConfetti:    true,
		MinRevolutions:  3,
		MaxRevolutions:  5,
	}
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Client {
	case ClientMemory, ClientExtension, ClientREST:
	default:
		return fmt.Errorf("%w: unknown client %q", ErrInvalidConfig, c.Client)
	}
	if c.Client == ClientREST && strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("%w: api_url is required for the rest client", ErrInvalidConfig)
	}
	if c.DefaultDuration <= 0 {
		return fmt.Errorf("%w: default_duration must be positive", ErrInvalidConfig)
	}
	if c.MinRevolutions < 3 || c.MaxRevolutions < c.MinRevolutions {
		return fmt.Errorf("%w: revolutions must satisfy 3 <= min <= max", ErrInvalidConfig)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	}
	return nil
}
