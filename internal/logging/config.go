package logging

import "strings"

// Config controls logger initialization.
type Config struct {
	// LogLevel controls verbosity (debug, info, warn, error).
	// Defaults to "warn" if empty; unknown values fall back to "info".
	LogLevel string

	// OutputPath is the log output destination (stdout, stderr, or file path).
	// Defaults to "stderr" so logs never mix with command output.
	OutputPath string

	// Console switches from the JSON encoder to the human-readable console encoder.
	Console bool
}

// DefaultConfig returns a config suitable for an interactive CLI run.
func DefaultConfig() Config {
	return Config{
		LogLevel:   "warn",
		OutputPath: "stderr",
	}
}

// WithLogLevel sets the log level.
func (c Config) WithLogLevel(level string) Config {
	c.LogLevel = level
	return c
}

// WithOutputPath sets the output path.
func (c Config) WithOutputPath(path string) Config {
	c.OutputPath = path
	return c
}

// IsDebug reports whether debug output is enabled.
func (c Config) IsDebug() bool {
	return strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug")
}
