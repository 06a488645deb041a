package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// APIConfig contains the remote endpoint credentials
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Tenant  string `mapstructure:"tenant" yaml:"tenant"`
	Token   string `mapstructure:"token" yaml:"token"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	Directory   string `mapstructure:"directory" yaml:"directory"`
	Force       bool   `mapstructure:"force" yaml:"force"`
	KeepRawJSON bool   `mapstructure:"keep_raw_json" yaml:"keep_raw_json"`
}

// HTTPConfig contains transport settings
type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration and normalizes the base URL.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required; run cmapsync init first")
	}
	if !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must start with https://")
	}
	if !strings.HasSuffix(c.API.BaseURL, "/") {
		c.API.BaseURL += "/"
	}
	if c.API.Token == "" {
		return fmt.Errorf("api.token is required; run cmapsync init first")
	}
	if c.API.Tenant == "" {
		return fmt.Errorf("api.tenant is required; run cmapsync init first")
	}

	if c.HTTP.Timeout < time.Second {
		c.HTTP.Timeout = DefaultTimeout
	}
	if c.HTTP.MaxRetries < 0 {
		c.HTTP.MaxRetries = 0
	}
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}

	return nil
}
