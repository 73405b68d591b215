package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Cache.DatasetEnabled)
	assert.Equal(t, 24, cfg.Cache.FeedTTLHours)
	assert.Equal(t, 100, cfg.Cache.QueryCacheCapacity)
	assert.Equal(t, 1, cfg.Cache.QueryCacheTTLHours)
	assert.Equal(t, 2023, cfg.Router.HistoricalMaxSeason)
	assert.Equal(t, 3, cfg.Sources.MaxRetries)
	assert.Equal(t, 2.0, cfg.Sources.BackoffFactor)
	assert.Equal(t, "json", cfg.Logging.Format)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	content := `
server:
  port: 9090
cache:
  feed_ttl_hours: 6
  query_cache_capacity: 50
sources:
  dataset_path: /data/stats
router:
  current_season: 2024
logging:
  level: debug
  format: text
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Cache.FeedTTLHours)
	assert.Equal(t, 50, cfg.Cache.QueryCacheCapacity)
	assert.Equal(t, "/data/stats", cfg.Sources.DatasetPath)
	assert.Equal(t, 2024, cfg.Router.CurrentSeason)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1, cfg.Cache.QueryCacheTTLHours)
	assert.Equal(t, 10*time.Second, cfg.Sources.Timeout)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GRIDSTATS_PORT", "7070")
	t.Setenv("GRIDSTATS_FEED_TTL_HOURS", "2")
	t.Setenv("GRIDSTATS_DATASET_PATH", "/env/data")
	t.Setenv("GRIDSTATS_CURRENT_SEASON", "2026")
	t.Setenv("GRIDSTATS_LOG_LEVEL", "warn")
	t.Setenv("GRIDSTATS_RETRY_DELAY_MS", "250")
	t.Setenv("GRIDSTATS_RATE_LIMIT_DELAY_MS", "750")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Cache.FeedTTLHours)
	assert.Equal(t, "/env/data", cfg.Sources.DatasetPath)
	assert.Equal(t, 2026, cfg.Router.CurrentSeason)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Sources.RetryDelay)
	assert.Equal(t, 750*time.Millisecond, cfg.Sources.RateLimitDelay)
}

func TestEnvOverridesFile(t *testing.T) {
	content := "server:\n  port: 9090\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("GRIDSTATS_PORT", "7071")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7071, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"zero feed ttl", func(c *Config) { c.Cache.FeedTTLHours = 0 }},
		{"zero query capacity", func(c *Config) { c.Cache.QueryCacheCapacity = 0 }},
		{"zero retries", func(c *Config) { c.Sources.MaxRetries = 0 }},
		{"backoff below one", func(c *Config) { c.Sources.BackoffFactor = 0.5 }},
		{"ancient historical max", func(c *Config) { c.Router.HistoricalMaxSeason = 1990 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
