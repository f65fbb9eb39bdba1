package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

const (
	envAPIURL              = "NOTEHUB_API_URL"
	envOnlineCheckInterval = "NOTEHUB_ONLINE_CHECK_INTERVAL"
	envRequestTimeout      = "NOTEHUB_REQUEST_TIMEOUT"
	envDBPath              = "NOTEHUB_DB_PATH"
	envLogLevel            = "NOTEHUB_LOG_LEVEL"
	envMetricsAddr         = "NOTEHUB_METRICS_ADDR"
)

// readEnv returns the NOTEHUB_* variables from path merged with the process
// environment. Process variables win over the file; a missing file is fine.
func readEnv(path string) (map[string]string, error) {
	vars := map[string]string{}
	if path != "" {
		fileVars, err := godotenv.Read(path)
		switch {
		case err == nil:
			vars = fileVars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
	}

	for _, key := range []string{envAPIURL, envOnlineCheckInterval, envRequestTimeout, envDBPath, envLogLevel, envMetricsAddr} {
		if v, ok := os.LookupEnv(key); ok {
			vars[key] = v
		}
	}
	return vars, nil
}

// applyEnv overlays cfg with the values found by readEnv.
func applyEnv(cfg *Config, path string) error {
	vars, err := readEnv(path)
	if err != nil {
		return err
	}

	if v := vars[envAPIURL]; v != "" {
		cfg.APIBaseURL = v
	}
	if v := vars[envDBPath]; v != "" {
		cfg.DBPath = v
	}
	if v := vars[envLogLevel]; v != "" {
		cfg.LogLevel = v
	}
	if v, ok := vars[envMetricsAddr]; ok {
		cfg.MetricsAddr = v
	}
	if v := vars[envOnlineCheckInterval]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envOnlineCheckInterval, err)
		}
		cfg.OnlineCheckInterval = d
	}
	if v := vars[envRequestTimeout]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}
