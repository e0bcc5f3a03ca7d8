package config

import (
	"github.com/spf13/viper"
)

// ApplyDefaults sets default configuration values in the provided Viper instance.
func ApplyDefaults(v *viper.Viper) {
	// Connection (no default URL or token: both must be supplied)
	v.SetDefault("ctfd.url", "")
	v.SetDefault("auth.token", "")

	// Output Settings
	v.SetDefault("defaults.output-format", "json") // json, table, csv
	v.SetDefault("defaults.verbose", false)
	v.SetDefault("defaults.quiet", false)
	v.SetDefault("defaults.notify", true) // email credentials to imported users
	v.SetDefault("defaults.progress-threshold", "2s")

	// HTTP
	v.SetDefault("http.timeout", "30s") // duration or seconds, 0 = transport default

	// Logging
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.format", "json") // json, console

	// Audit
	v.SetDefault("audit.enabled", true)

	// Tracing
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", false)
	v.SetDefault("tracing.headers", map[string]string{}) // e.g. collector auth
}
