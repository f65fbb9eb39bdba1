package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the NoteHub CLI.
//
// Units: OnlineCheckInterval and RequestTimeout are time.Duration values.
type Config struct {
	APIBaseURL          string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	DBPath              string
	LogLevel            string
	// MetricsAddr enables the Prometheus endpoint when non-empty.
	MetricsAddr string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.DBPath = "notehub.db"
	c.LogLevel = "info"
	c.MetricsAddr = ""
}

// Load constructs a Config from defaults, the env file, the optional config
// file and finally the flags set on fs. Later sources take precedence over
// earlier ones. fs must have been populated by RegisterFlags and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := applyEnv(cfg, DefaultEnvFile); err != nil {
		return nil, err
	}

	path, err := fs.GetString(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("config flag: %w", err)
	}
	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects values that would break the monitor or the HTTP client
// regardless of which source supplied them.
func (c *Config) validate() error {
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}
