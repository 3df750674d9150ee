package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Throttle.MinutePerProvider)
	assert.Equal(t, 180, cfg.Throttle.DailyPerResource)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 10*time.Second, cfg.Pipeline.TaskTimeout.Std())
	assert.Equal(t, "Asia/Shanghai", cfg.Market.Timezone)
	assert.Equal(t, "000001.SH", cfg.Market.BenchmarkIndex)
	assert.Equal(t, "data/stock_radar.db", cfg.Database.SQLitePath)
}

func TestLoadReadsYAML(t *testing.T) {
	path := writeConfig(t, `
provider:
  base_url: https://feed.example.com
  api_key: secret
throttle:
  minute_per_provider: 60
redis:
  addr: localhost:6379
  db: 2
pipeline:
  workers: 8
  task_timeout: 5s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://feed.example.com", cfg.Provider.BaseURL)
	assert.Equal(t, 60, cfg.Throttle.MinutePerProvider)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.TaskTimeout.Std())
	// Unset fields still fall back.
	assert.Equal(t, 180, cfg.Throttle.DailyPerResource)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
provider:
  base_url: https://feed.example.com
`)
	t.Setenv("RADAR_BASE_URL", "https://override.example.com")
	t.Setenv("REDIS_ADDR", "redis-prod:6379")
	t.Setenv("RADAR_MOCK", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://override.example.com", cfg.Provider.BaseURL)
	assert.Equal(t, "redis-prod:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Provider.Mock)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	// No base URL and no mock flag is a misconfiguration.
	require.Error(t, cfg.Validate())

	cfg.Provider.Mock = true
	require.NoError(t, cfg.Validate())

	cfg.Provider.Mock = false
	cfg.Provider.BaseURL = "https://feed.example.com"
	require.NoError(t, cfg.Validate())

	cfg.Market.Timezone = "Mars/Olympus"
	require.Error(t, cfg.Validate())
}
