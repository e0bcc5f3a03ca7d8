// Package config provides configuration management for ctfd-admin.
//
// Purpose:
//
//	Load configuration from multiple sources: environment variables, a YAML config
//	file, and command-line flags. Uses Viper with clear precedence:
//	flags > environment variables > config file > defaults.
//
// Configuration Sources:
//   - Environment variables: CTFD_ADMIN_* prefix (e.g., CTFD_ADMIN_CTFD_URL, CTFD_ADMIN_AUTH_TOKEN)
//   - Config file: ~/.ctfd-admin/config.yaml, ./config.yaml, or an explicit path via --config
//   - Command-line flags: Take precedence over all other sources
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "CTFD_ADMIN"

// Config holds all CLI configuration.
type Config struct {
	// Connection
	URL   string
	Token string

	// Output Settings
	OutputFormat string // json, table, csv
	Verbose      bool
	Quiet        bool
	Notify       bool

	// Progress lines appear once a bulk run takes longer than this.
	ProgressThreshold time.Duration

	// HTTP
	Timeout time.Duration

	// Logging
	LogLevel  string
	LogOutput string
	LogFormat string // json, console

	// Audit
	AuditEnabled bool

	// Tracing (OTLP/HTTP collector host:port; empty disables export)
	TraceEndpoint string
	TraceInsecure bool
	TraceHeaders  map[string]string

	// Config File Path (for discovery)
	ConfigFile string
}

// Load loads configuration from all sources with proper precedence. An empty
// configFile searches ~/.ctfd-admin and the current directory; a missing
// discovered file is not an error, a missing explicit file is.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	ApplyDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".ctfd-admin"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	timeout, err := parseTimeout(v.GetString("http.timeout"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		URL:               v.GetString("ctfd.url"),
		Token:             v.GetString("auth.token"),
		OutputFormat:      v.GetString("defaults.output-format"),
		Verbose:           v.GetBool("defaults.verbose"),
		Quiet:             v.GetBool("defaults.quiet"),
		Notify:            v.GetBool("defaults.notify"),
		ProgressThreshold: v.GetDuration("defaults.progress-threshold"),
		Timeout:           timeout,
		LogLevel:          v.GetString("logging.level"),
		LogOutput:         v.GetString("logging.output"),
		LogFormat:         v.GetString("logging.format"),
		AuditEnabled:      v.GetBool("audit.enabled"),
		TraceEndpoint:     v.GetString("tracing.endpoint"),
		TraceInsecure:     v.GetBool("tracing.insecure"),
		TraceHeaders:      v.GetStringMapString("tracing.headers"),
		ConfigFile:        v.ConfigFileUsed(),
	}

	return cfg, nil
}

// parseTimeout reads http.timeout as a duration ("10s", "1m30s") or as a bare
// number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid http.timeout %q: want a duration such as 30s or a number of seconds", raw)
	}
	return d, nil
}

// Overrides carries flag values that take precedence over loaded config.
// Zero values leave the loaded setting untouched.
type Overrides struct {
	URL          string
	Token        string
	OutputFormat string
	LogLevel     string
	Verbose      bool
	Quiet        bool
}

// Apply applies flag overrides to cfg.
func (o Overrides) Apply(cfg *Config) {
	if o.URL != "" {
		cfg.URL = o.URL
	}
	if o.Token != "" {
		cfg.Token = o.Token
	}
	if o.OutputFormat != "" {
		cfg.OutputFormat = o.OutputFormat
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Verbose {
		cfg.Verbose = true
	}
	if o.Quiet {
		cfg.Quiet = true
	}
}

// LoadWithFlags loads configuration and applies flag overrides.
func LoadWithFlags(configFile string, overrides Overrides) (*Config, error) {
	cfg, err := Load(configFile)
	if err != nil {
		return nil, err
	}
	overrides.Apply(cfg)

	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// Validate checks settings that do not depend on the remote instance and
// reports every problem found.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.OutputFormat {
	case "json", "table", "csv":
	default:
		result = multierror.Append(result,
			fmt.Errorf("unsupported output format %q (want json, table or csv)", c.OutputFormat))
	}

	if c.Timeout < 0 {
		result = multierror.Append(result,
			fmt.Errorf("http.timeout must be non-negative, got %v", c.Timeout))
	}

	if c.ProgressThreshold < 0 {
		result = multierror.Append(result,
			fmt.Errorf("defaults.progress-threshold must be non-negative, got %v", c.ProgressThreshold))
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		result = multierror.Append(result,
			fmt.Errorf("unsupported log level %q (want debug, info, warn or error)", c.LogLevel))
	}

	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "json", "console":
	default:
		result = multierror.Append(result,
			fmt.Errorf("unsupported log format %q (want json or console)", c.LogFormat))
	}

	return result.ErrorOrNil()
}
