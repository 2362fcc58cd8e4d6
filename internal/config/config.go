// Package config handles configuration loading for quarterdash.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	SEC     SECConfig     `mapstructure:"sec"     yaml:"sec"`
	Cache   CacheConfig   `mapstructure:"cache"   yaml:"cache"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SECConfig holds SEC EDGAR access settings. The SEC requires a User-Agent
// identifying the caller with a contact address.
type SECConfig struct {
	UserAgent  string `mapstructure:"user_agent"   yaml:"user_agent"`
	TimeoutSec int    `mapstructure:"timeout_sec"  yaml:"timeout_sec"`
	RatePerSec int    `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
}

// CacheConfig holds memoization settings.
type CacheConfig struct {
	TableTTLSec int `mapstructure:"table_ttl_sec" yaml:"table_ttl_sec"`
}

// TableTTL returns the tidy-table cache TTL as a duration.
func (c CacheConfig) TableTTL() time.Duration {
	return time.Duration(c.TableTTLSec) * time.Second
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
//  2. ~/.quarterdash/config.yaml (home directory)
//  3. /etc/quarterdash/config.yaml (system)
//
// Environment variables override config file values.
// Format: QUARTERDASH_<SECTION>_<KEY>, e.g., QUARTERDASH_SEC_USER_AGENT
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".quarterdash"))
	v.AddConfigPath("/etc/quarterdash")

	v.SetEnvPrefix("QUARTERDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
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
	v.SetEnvPrefix("QUARTERDASH")
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
	// SEC defaults
	v.SetDefault("sec.user_agent", "quarterdash/0.1 (ishavarrier@address.com)")
	v.SetDefault("sec.timeout_sec", 30)
	v.SetDefault("sec.rate_per_sec", 10)

	// Cache defaults
	v.SetDefault("cache.table_ttl_sec", 3600) // 1 hour

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads keys that must win over file values.
func overrideFromEnv(cfg *Config) {
	if ua := os.Getenv("QUARTERDASH_SEC_USER_AGENT"); ua != "" {
		cfg.SEC.UserAgent = ua
	}
	if ua := os.Getenv("SEC_EMAIL"); ua != "" {
		cfg.SEC.UserAgent = fmt.Sprintf("quarterdash/0.1 (%s)", ua)
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
