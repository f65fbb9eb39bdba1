package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// isolate runs the test in an empty directory with no NOTEHUB_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range []string{envAPIURL, envOnlineCheckInterval, envRequestTimeout, envDBPath, envLogLevel, envMetricsAddr} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:8000", c.APIBaseURL)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "notehub.db", c.DBPath)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.MetricsAddr)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	isolate(t)

	cfg, err := Load(newFlagSet(t))
	require.NoError(t, err)

	if diff := cmp.Diff(defaults(), *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)

	writeFile(t, dir, ".env", "NOTEHUB_API_URL=http://from-env\nNOTEHUB_DB_PATH=env.db\nNOTEHUB_LOG_LEVEL=warn\n")
	cfgFile := writeFile(t, dir, "cfg.yaml", "api_base_url: http://from-file\nonline_check_interval: 7s\n")

	cfg, err := Load(newFlagSet(t, "-c", cfgFile, "--api", "http://from-flag", "--timeout", "2s"))
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag", cfg.APIBaseURL)
	assert.Equal(t, 7*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "env.db", cfg.DBPath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_ProcessEnvOverridesEnvFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".env", "NOTEHUB_ONLINE_CHECK_INTERVAL=5s\n")
	t.Setenv(envOnlineCheckInterval, "9s")

	cfg, err := Load(newFlagSet(t))
	require.NoError(t, err)
	assert.Equal(t, 9*time.Second, cfg.OnlineCheckInterval)
}

func TestLoad_InvalidEnvDuration(t *testing.T) {
	isolate(t)
	t.Setenv(envRequestTimeout, "soon")

	_, err := Load(newFlagSet(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), envRequestTimeout)
}

func TestLoad_RejectsNonPositiveDurations(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
	}{
		{name: "zero env interval", env: map[string]string{envOnlineCheckInterval: "0s"}, wantErr: "online check interval"},
		{name: "negative env interval", env: map[string]string{envOnlineCheckInterval: "-1s"}, wantErr: "online check interval"},
		{name: "negative env timeout", env: map[string]string{envRequestTimeout: "-5s"}, wantErr: "request timeout"},
		{name: "negative file interval", file: "online_check_interval: -2s\n", wantErr: "online check interval"},
		{name: "negative file timeout", file: "request_timeout: -1s\n", wantErr: "request timeout"},
		{name: "zero env timeout allowed", env: map[string]string{envRequestTimeout: "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			var args []string
			if tt.file != "" {
				args = []string{"-c", writeFile(t, dir, "cfg.yaml", tt.file)}
			}

			cfg, err := Load(newFlagSet(t, args...))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Zero(t, cfg.RequestTimeout)
		})
	}
}

func TestLoad_JSONFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "cfg.json", `{"api_base_url":"https://api.example","request_timeout":"4s","online_check_interval":2000000000,"metrics_addr":":9100"}`)

	cfg, err := Load(newFlagSet(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example", cfg.APIBaseURL)
	assert.Equal(t, 4*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, "notehub.db", cfg.DBPath)
}

func TestLoad_BadFiles(t *testing.T) {
	dir := isolate(t)

	t.Run("missing", func(t *testing.T) {
		_, err := Load(newFlagSet(t, "-c", filepath.Join(dir, "nope.json")))
		require.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.json", `{ this is not valid json`)
		_, err := Load(newFlagSet(t, "-c", bad))
		require.Error(t, err)
	})

	t.Run("invalid YAML duration", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.yml", "request_timeout: forever\n")
		_, err := Load(newFlagSet(t, "-c", bad))
		require.Error(t, err)
	})
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(c *Config)
		wantErr bool
	}{
		{
			name: "short forms",
			args: []string{"-a", "http://127.0.0.1:9090", "-i", "10"},
			want: func(c *Config) {
				c.APIBaseURL = "http://127.0.0.1:9090"
				c.OnlineCheckInterval = 10 * time.Second
			},
		},
		{
			name: "long forms",
			args: []string{"--db", "/tmp/x.db", "--log-level", "debug", "--metrics-addr", ":2112"},
			want: func(c *Config) {
				c.DBPath = "/tmp/x.db"
				c.LogLevel = "debug"
				c.MetricsAddr = ":2112"
			},
		},
		{
			name:    "non-positive interval",
			args:    []string{"-i", "0"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			err := applyFlags(&cfg, newFlagSet(t, tt.args...))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.want(&want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func TestRegisterFlags_RejectsNonNumericInterval(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.Error(t, fs.Parse([]string{"-i", "abc"}))
}
