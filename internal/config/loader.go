package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file, environment, and defaults.
// Uses the global viper instance to access CLI flag bindings.
func Load() (*Config, error) {
	v := viper.GetViper()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Environment variables (CMAPSYNC_*)
	v.SetEnvPrefix("CMAPSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the default config file, creating the
// config directory if needed. Used by the init flow.
func Save(cfg *Config) (string, error) {
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		return "", err
	}

	v := viper.New()
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.tenant", cfg.API.Tenant)
	v.Set("api.token", cfg.API.Token)
	v.Set("output.directory", cfg.Output.Directory)

	path := ConfigFilePath()
	if err := v.WriteConfigAs(path); err != nil {
		return "", err
	}
	return path, nil
}
