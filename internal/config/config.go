// Package config handles configuration loading for Quantum Kapital.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Provider   ProviderConfig   `mapstructure:"provider"   yaml:"provider"`
	Datasource DatasourceConfig `mapstructure:"datasource" yaml:"datasource"`
	Projection ProjectionConfig `mapstructure:"projection" yaml:"projection"`
	API        APIConfig        `mapstructure:"api"        yaml:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
}

// ProviderConfig holds data provider settings and credentials.
type ProviderConfig struct {
	Default         string `mapstructure:"default"          yaml:"default"` // "alphavantage", "stockanalysis", "mockdata"
	AlphaVantageKey string `mapstructure:"alphavantage_key" yaml:"alphavantage_key"`
	CacheTTLSec     int    `mapstructure:"cache_ttl_sec"    yaml:"cache_ttl_sec"`
}

// DatasourceConfig holds data access settings.
type DatasourceConfig struct {
	BatchConcurrency int      `mapstructure:"batch_concurrency" yaml:"batch_concurrency"`
	NewsFeeds        []string `mapstructure:"news_feeds"        yaml:"news_feeds"`
	NewsLimit        int      `mapstructure:"news_limit"        yaml:"news_limit"`
}

// ProjectionConfig holds projection engine settings.
type ProjectionConfig struct {
	DefaultYears int `mapstructure:"default_years" yaml:"default_years"`
	HistoryYears int `mapstructure:"history_years" yaml:"history_years"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.quantum-kapital/config.yaml (home directory)
//  3. /etc/quantum-kapital/config.yaml (system)
//
// Environment variables override config file values.
// Format: QK_<SECTION>_<KEY>, e.g., QK_PROVIDER_ALPHAVANTAGE_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".quantum-kapital"))
	v.AddConfigPath("/etc/quantum-kapital")

	v.SetEnvPrefix("QK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("QK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("provider.default", "")
	v.SetDefault("provider.cache_ttl_sec", 3600) // 1 hour

	// Datasource defaults
	v.SetDefault("datasource.batch_concurrency", 4)
	v.SetDefault("datasource.news_limit", 25)

	// Projection defaults
	v.SetDefault("projection.default_years", 5)
	v.SetDefault("projection.history_years", 5)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000", "http://localhost:1420"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The unprefixed ALPHAVANTAGE_API_KEY is honored too since that is what the
// vendor's own examples use.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("QK_PROVIDER_ALPHAVANTAGE_KEY"); key != "" {
		cfg.Provider.AlphaVantageKey = key
	}
	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" && cfg.Provider.AlphaVantageKey == "" {
		cfg.Provider.AlphaVantageKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
