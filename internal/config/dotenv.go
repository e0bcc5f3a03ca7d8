package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read from the working directory when it exists.
const DefaultEnvFile = ".env"

// LoadEnvFile exports the KEY=value lines of path into the process environment
// so CTFD_ADMIN_* settings can live next to a CTF's other deployment files.
// Variables that are already set are left alone. An empty path reads
// DefaultEnvFile when present; an explicit path must exist.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
