package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Default values
const (
	DefaultOutputDir = "."

	// Transport defaults. Retries default to off: the export is a single
	// deterministic pass and rate-limit handling is left to re-runs.
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 0

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cmapsync"
	}
	return filepath.Join(home, ".cmapsync")
}

// ConfigFilePath returns the default config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// setDefaults registers default values on a viper instance
func setDefaults(v *viper.Viper) {
	v.SetDefault("output.directory", DefaultOutputDir)
	v.SetDefault("output.force", false)
	v.SetDefault("output.keep_raw_json", false)
	v.SetDefault("http.timeout", DefaultTimeout)
	v.SetDefault("http.max_retries", DefaultMaxRetries)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
