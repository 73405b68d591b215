package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
	Sources SourcesConfig `yaml:"sources" json:"sources"`
	Router  RouterConfig  `yaml:"router" json:"router"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" json:"host"`
	Port         int           `yaml:"port" json:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
}

// CacheConfig configures the three cache tiers and the optional
// scheduled cleanup. An empty CleanupSchedule disables the scheduler;
// expiry then happens lazily on read only.
type CacheConfig struct {
	DatasetEnabled     bool   `yaml:"dataset_enabled" json:"dataset_enabled"`
	FeedTTLHours       int    `yaml:"feed_ttl_hours" json:"feed_ttl_hours"`
	QueryCacheCapacity int    `yaml:"query_cache_capacity" json:"query_cache_capacity"`
	QueryCacheTTLHours int    `yaml:"query_cache_ttl_hours" json:"query_cache_ttl_hours"`
	CleanupSchedule    string `yaml:"cleanup_schedule" json:"cleanup_schedule"`
	WarmOnStartup      bool   `yaml:"warm_on_startup" json:"warm_on_startup"`
}

// SourcesConfig configures the three data source adapters.
type SourcesConfig struct {
	DatasetPath    string        `yaml:"dataset_path" json:"dataset_path"`
	FeedBaseURL    string        `yaml:"feed_base_url" json:"feed_base_url"`
	WebAPIBaseURL  string        `yaml:"webapi_base_url" json:"webapi_base_url"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	MaxRetries     int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay" json:"retry_delay"`
	BackoffFactor  float64       `yaml:"backoff_factor" json:"backoff_factor"`
	RateLimitDelay time.Duration `yaml:"rate_limit_delay" json:"rate_limit_delay"`
}

// RouterConfig configures season banding. CurrentSeason 0 means infer
// from the wall clock.
type RouterConfig struct {
	CurrentSeason       int `yaml:"current_season" json:"current_season"`
	HistoricalMaxSeason int `yaml:"historical_max_season" json:"historical_max_season"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Path      string `yaml:"path" json:"path"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// Load loads configuration from an optional YAML file, applies
// environment overrides, and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := cfg.LoadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	cfg.LoadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Cache: CacheConfig{
			DatasetEnabled:     true,
			FeedTTLHours:       24,
			QueryCacheCapacity: 100,
			QueryCacheTTLHours: 1,
			CleanupSchedule:    "",
			WarmOnStartup:      true,
		},
		Sources: SourcesConfig{
			DatasetPath:    "./data/historical",
			FeedBaseURL:    "https://feed.gridstats.io/v1",
			WebAPIBaseURL:  "https://site.api.espn.com/apis/site/v2/sports/football/nfl",
			Timeout:        10 * time.Second,
			MaxRetries:     3,
			RetryDelay:     time.Second,
			BackoffFactor:  2.0,
			RateLimitDelay: 500 * time.Millisecond,
		},
		Router: RouterConfig{
			CurrentSeason:       0,
			HistoricalMaxSeason: 2023,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "gridstats",
		},
	}
}

// LoadFromFile loads configuration from a YAML file.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// LoadFromEnv overrides configuration from environment variables.
func (c *Config) LoadFromEnv() {
	if host := os.Getenv("GRIDSTATS_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := getEnvInt("GRIDSTATS_PORT", 0); port != 0 {
		c.Server.Port = port
	}

	if v := os.Getenv("GRIDSTATS_DATASET_CACHE_ENABLED"); v != "" {
		c.Cache.DatasetEnabled = getEnvBool("GRIDSTATS_DATASET_CACHE_ENABLED", c.Cache.DatasetEnabled)
	}
	if v := getEnvInt("GRIDSTATS_FEED_TTL_HOURS", 0); v != 0 {
		c.Cache.FeedTTLHours = v
	}
	if v := getEnvInt("GRIDSTATS_QUERY_CACHE_CAPACITY", 0); v != 0 {
		c.Cache.QueryCacheCapacity = v
	}
	if v := getEnvInt("GRIDSTATS_QUERY_CACHE_TTL_HOURS", 0); v != 0 {
		c.Cache.QueryCacheTTLHours = v
	}
	if v := os.Getenv("GRIDSTATS_CLEANUP_SCHEDULE"); v != "" {
		c.Cache.CleanupSchedule = v
	}

	if path := os.Getenv("GRIDSTATS_DATASET_PATH"); path != "" {
		c.Sources.DatasetPath = path
	}
	if url := os.Getenv("GRIDSTATS_FEED_BASE_URL"); url != "" {
		c.Sources.FeedBaseURL = url
	}
	if url := os.Getenv("GRIDSTATS_WEBAPI_BASE_URL"); url != "" {
		c.Sources.WebAPIBaseURL = url
	}
	if v := getEnvInt("GRIDSTATS_SOURCE_TIMEOUT_SECONDS", 0); v != 0 {
		c.Sources.Timeout = time.Duration(v) * time.Second
	}
	if v := getEnvInt("GRIDSTATS_SOURCE_MAX_RETRIES", 0); v != 0 {
		c.Sources.MaxRetries = v
	}
	if v := getEnvInt("GRIDSTATS_RETRY_DELAY_MS", 0); v != 0 {
		c.Sources.RetryDelay = time.Duration(v) * time.Millisecond
	}
	if v := getEnvInt("GRIDSTATS_RATE_LIMIT_DELAY_MS", 0); v != 0 {
		c.Sources.RateLimitDelay = time.Duration(v) * time.Millisecond
	}
	if v := getEnvFloat("GRIDSTATS_SOURCE_BACKOFF_FACTOR", 0); v != 0 {
		c.Sources.BackoffFactor = v
	}

	if v := getEnvInt("GRIDSTATS_CURRENT_SEASON", 0); v != 0 {
		c.Router.CurrentSeason = v
	}
	if v := getEnvInt("GRIDSTATS_HISTORICAL_MAX_SEASON", 0); v != 0 {
		c.Router.HistoricalMaxSeason = v
	}

	if level := os.Getenv("GRIDSTATS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("GRIDSTATS_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Cache.FeedTTLHours < 1 {
		return fmt.Errorf("feed TTL must be at least 1 hour, got %d", c.Cache.FeedTTLHours)
	}
	if c.Cache.QueryCacheCapacity < 1 {
		return fmt.Errorf("query cache capacity must be positive, got %d", c.Cache.QueryCacheCapacity)
	}
	if c.Cache.QueryCacheTTLHours < 1 {
		return fmt.Errorf("query cache TTL must be at least 1 hour, got %d", c.Cache.QueryCacheTTLHours)
	}
	if c.Sources.MaxRetries < 1 {
		return fmt.Errorf("max retries must be positive, got %d", c.Sources.MaxRetries)
	}
	if c.Sources.BackoffFactor < 1 {
		return fmt.Errorf("backoff factor must be at least 1, got %f", c.Sources.BackoffFactor)
	}
	if c.Router.HistoricalMaxSeason < 1999 {
		return fmt.Errorf("historical max season out of range: %d", c.Router.HistoricalMaxSeason)
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal"}
	if !contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// Helper functions

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
