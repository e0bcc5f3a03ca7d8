// Package config provides tests for configuration management.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at an empty temp dir so a
// developer's own config file cannot leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestApplyDefaults(t *testing.T) {
	v := viper.New()
	ApplyDefaults(v)

	assert.Equal(t, "json", v.GetString("defaults.output-format"))
	assert.Equal(t, 30*time.Second, v.GetDuration("http.timeout"))
	assert.Equal(t, "json", v.GetString("logging.format"))
	assert.True(t, v.GetBool("defaults.notify"))
	assert.Empty(t, v.GetString("ctfd.url"))
}

func TestLoad(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.ProgressThreshold)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("CTFD_ADMIN_CTFD_URL", "https://env.example.com")
	t.Setenv("CTFD_ADMIN_AUTH_TOKEN", "env-token")
	t.Setenv("CTFD_ADMIN_HTTP_TIMEOUT", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.URL)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoad_DiscoveredConfigFile(t *testing.T) {
	home := isolate(t)
	configDir := filepath.Join(home, ".ctfd-admin")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `
ctfd:
  url: https://file.example.com/
auth:
  token: file-token
defaults:
  output-format: table
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.com/", cfg.URL)
	assert.Equal(t, "file-token", cfg.Token)
	assert.Equal(t, "table", cfg.OutputFormat)
	assert.Equal(t, filepath.Join(configDir, "config.yaml"), cfg.ConfigFile)
}

func TestLoad_HTTPTimeout(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration", value: "10s", want: 10 * time.Second},
		{name: "minutes", value: "1m30s", want: 90 * time.Second},
		{name: "bare seconds", value: "45", want: 45 * time.Second},
		{name: "zero", value: "0", want: 0},
		{name: "garbage", value: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "config.yaml")
			content := "http:\n  timeout: " + tt.value + "\n"
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "http.timeout")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Timeout)
		})
	}
}

func TestLoad_LoggingAndTracingKeys(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  format: console
tracing:
  endpoint: collector:4318
  headers:
    authorization: Bearer abc
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "collector:4318", cfg.TraceEndpoint)
	assert.Equal(t, map[string]string{"authorization": "Bearer abc"}, cfg.TraceHeaders)
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithFlags(t *testing.T) {
	isolate(t)
	t.Setenv("CTFD_ADMIN_CTFD_URL", "https://env.example.com")

	cfg, err := LoadWithFlags("", Overrides{
		URL:          "https://flag.example.com",
		OutputFormat: "csv",
		Verbose:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.com", cfg.URL)
	assert.Equal(t, "csv", cfg.OutputFormat)
	assert.Equal(t, "debug", cfg.LogLevel, "--verbose turns on debug logging")
}

func TestValidate(t *testing.T) {
	cfg := &Config{OutputFormat: "json", LogLevel: "warn"}
	assert.NoError(t, cfg.Validate())

	cfg.OutputFormat = "xml"
	assert.Error(t, cfg.Validate())

	cfg = &Config{OutputFormat: "table", Timeout: -time.Second}
	assert.Error(t, cfg.Validate())

	cfg = &Config{OutputFormat: "table", LogFormat: "console"}
	assert.NoError(t, cfg.Validate())

	cfg.LogFormat = "xml"
	assert.Error(t, cfg.Validate())

	cfg = &Config{OutputFormat: "table", ProgressThreshold: -time.Second}
	assert.Error(t, cfg.Validate())
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{OutputFormat: "xml", Timeout: -time.Second, LogLevel: "loud"}

	err := cfg.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
	assert.Contains(t, err.Error(), `"xml"`)
	assert.Contains(t, err.Error(), `"loud"`)
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)

	// Register restores with t.Setenv, then start from unset variables.
	t.Setenv("CTFD_ADMIN_CTFD_URL", "")
	t.Setenv("CTFD_ADMIN_AUTH_TOKEN", "already-set")
	require.NoError(t, os.Unsetenv("CTFD_ADMIN_CTFD_URL"))

	content := "CTFD_ADMIN_CTFD_URL=https://dotenv.example.com\nCTFD_ADMIN_AUTH_TOKEN=from-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	require.NoError(t, LoadEnvFile(""))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com", cfg.URL)
	assert.Equal(t, "already-set", cfg.Token, "existing variables win over the env file")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	dir := isolate(t)

	assert.NoError(t, LoadEnvFile(""), "no default .env is fine")
	assert.Error(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
}
