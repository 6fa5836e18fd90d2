// Package common provides shared utilities for the crypto price-sync service
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the service
type Config struct {
	Environment string            `toml:"environment"`
	Server      ServerConfig      `toml:"server"`
	Clients     ClientsConfig     `toml:"clients"`
	RecordStore RecordStoreConfig `toml:"recordstore"`
	Datasets    DatasetsConfig    `toml:"datasets"`
	Cache       CacheConfig       `toml:"cache"`
	Auth        AuthConfig        `toml:"auth"`
	Scheduler   SchedulerConfig   `toml:"scheduler"`
	Logging     LoggingConfig     `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	CMC CMCConfig `toml:"cmc"`
}

// CMCConfig holds CoinMarketCap API configuration
type CMCConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *CMCConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 12 * time.Second
	}
	return d
}

// RecordStoreConfig holds document record-store API configuration
type RecordStoreConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	Version string `toml:"version"` // API version header value
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *RecordStoreConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DatasetsConfig holds the record-store dataset identifiers the service
// reads from and writes to.
type DatasetsConfig struct {
	Prices    string `toml:"prices"`
	Holdings  string `toml:"holdings"`
	Snapshots string `toml:"snapshots"`
	Summaries string `toml:"summaries"`
}

// CacheConfig holds quote cache configuration
type CacheConfig struct {
	RedisURL  string `toml:"redis_url"`
	TTL       string `toml:"ttl"`
	Retention string `toml:"retention"`
	KeyPrefix string `toml:"key_prefix"`
}

// GetTTL parses and returns the logical freshness window
func (c *CacheConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 300 * time.Second
	}
	return d
}

// GetRetention parses and returns the physical retention window.
// Entries older than the TTL but inside retention serve as stale fallbacks.
func (c *CacheConfig) GetRetention() time.Duration {
	d, err := time.ParseDuration(c.Retention)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// AuthConfig holds the shared-secret protecting the sync endpoints
type AuthConfig struct {
	APIToken string `toml:"api_token"`
}

// SchedulerConfig holds the background sync scheduler configuration
type SchedulerConfig struct {
	Interval string `toml:"interval"`
}

// GetInterval parses the scheduler interval; zero disables the scheduler.
func (c *SchedulerConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			CMC: CMCConfig{
				BaseURL:   "https://pro-api.coinmarketcap.com",
				RateLimit: 5,
				Timeout:   "12s",
			},
		},
		RecordStore: RecordStoreConfig{
			BaseURL: "https://api.notion.com",
			Version: "2022-06-28",
			Timeout: "30s",
		},
		Cache: CacheConfig{
			TTL:       "300s",
			Retention: "24h",
			KeyPrefix: "cmc_api_cache:",
		},
		Scheduler: SchedulerConfig{
			Interval: "0",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// The bare variable names (CMC_API_KEY, NOTION_TOKEN, REDIS_URL, API_SECRET)
// match the hosted deployment; CRYPTOSYNC_* variants cover the rest.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CRYPTOSYNC_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("CRYPTOSYNC_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("CRYPTOSYNC_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("CRYPTOSYNC_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("CMC_API_KEY"); v != "" {
		config.Clients.CMC.APIKey = v
	}
	if v := os.Getenv("NOTION_TOKEN"); v != "" {
		config.RecordStore.Token = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		config.Cache.RedisURL = v
	}
	if v := os.Getenv("API_SECRET"); v != "" {
		config.Auth.APIToken = v
	}

	if v := os.Getenv("NOTION_DATABASE_ID"); v != "" {
		config.Datasets.Prices = v
	}
	if v := os.Getenv("NOTION_HOLDINGS_DATABASE_ID"); v != "" {
		config.Datasets.Holdings = v
	}
	if v := os.Getenv("NOTION_SNAPSHOT_DATABASE_ID"); v != "" {
		config.Datasets.Snapshots = v
	}
	if v := os.Getenv("NOTION_SUMMARY_DATABASE_ID"); v != "" {
		config.Datasets.Summaries = v
	}

	if v := os.Getenv("CRYPTOSYNC_SCHEDULER_INTERVAL"); v != "" {
		config.Scheduler.Interval = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Validate reports the required identifiers/credentials that are absent.
// A non-empty result means the price sync cannot do any useful work.
func (c *Config) Validate() []string {
	var missing []string
	if c.Clients.CMC.APIKey == "" {
		missing = append(missing, "clients.cmc.api_key")
	}
	if c.RecordStore.Token == "" {
		missing = append(missing, "recordstore.token")
	}
	if c.Datasets.Prices == "" {
		missing = append(missing, "datasets.prices")
	}
	return missing
}

// ValidateHoldings reports the identifiers the holdings-derived operations
// need on top of Validate.
func (c *Config) ValidateHoldings() []string {
	var missing []string
	if c.RecordStore.Token == "" {
		missing = append(missing, "recordstore.token")
	}
	if c.Datasets.Holdings == "" {
		missing = append(missing, "datasets.holdings")
	}
	return missing
}
