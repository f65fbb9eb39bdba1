package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

const (
	flagConfig      = "config"
	flagAPI         = "api"
	flagInterval    = "interval"
	flagTimeout     = "timeout"
	flagDB          = "db"
	flagLogLevel    = "log-level"
	flagMetricsAddr = "metrics-addr"
)

// RegisterFlags defines the configuration flags on fs. Their defaults are
// only shown in help; Load applies a flag only when the user set it.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(flagConfig, "c", "", "path to a JSON or YAML config file")
	fs.StringP(flagAPI, "a", d.APIBaseURL, "base URL of the NoteHub API")
	fs.IntP(flagInterval, "i", int(d.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.Duration(flagTimeout, d.RequestTimeout, "per-request timeout")
	fs.String(flagDB, d.DBPath, "path to the local SQLite database")
	fs.String(flagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(flagMetricsAddr, d.MetricsAddr, "address for the Prometheus /metrics endpoint (disabled when empty)")
}

// applyFlags copies the flags the user changed on fs into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case flagAPI:
			cfg.APIBaseURL, err = fs.GetString(flagAPI)
		case flagInterval:
			var secs int
			secs, err = fs.GetInt(flagInterval)
			if err == nil && secs <= 0 {
				err = fmt.Errorf("--%s must be positive, got %d", flagInterval, secs)
			}
			cfg.OnlineCheckInterval = time.Duration(secs) * time.Second
		case flagTimeout:
			cfg.RequestTimeout, err = fs.GetDuration(flagTimeout)
		case flagDB:
			cfg.DBPath, err = fs.GetString(flagDB)
		case flagLogLevel:
			cfg.LogLevel, err = fs.GetString(flagLogLevel)
		case flagMetricsAddr:
			cfg.MetricsAddr, err = fs.GetString(flagMetricsAddr)
		}
	})
	return err
}
