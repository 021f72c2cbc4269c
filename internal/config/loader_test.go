package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  port: 9000
backend:
  base_url: http://analytics.internal:8000
database:
  host: localhost
  user: competiscope
  db_name: competiscope
redis:
  addr: localhost:6379
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "http://analytics.internal:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 3, cfg.Backend.RetryMax)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "daily", cfg.Comparison.DefaultPeriod)
	assert.Equal(t, 30, cfg.Comparison.DefaultLookback)
	assert.Equal(t, 10, cfg.Comparison.ChangeLogLimit)
	assert.Equal(t, 50, cfg.Comparison.GraphLimit)
	assert.Equal(t, 8*time.Second, cfg.Jobs.PollDelay)
	assert.Equal(t, "competiscope:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("COMPISCOPE_LOG_LEVEL", "debug")
	t.Setenv("COMPISCOPE_SERVER_PORT", "7777")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 7777, cfg.Server.Port)
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("COMPISCOPE_BACKEND_BASE_URL", "http://analytics.internal:8000")
	t.Setenv("COMPISCOPE_DATABASE_HOST", "localhost")
	t.Setenv("COMPISCOPE_DATABASE_USER", "competiscope")
	t.Setenv("COMPISCOPE_DATABASE_DB_NAME", "competiscope")
	t.Setenv("COMPISCOPE_REDIS_ADDR", "localhost:6379")
	t.Setenv("COMPISCOPE_LOG_FORMAT", "console")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://analytics.internal:8000", cfg.Backend.BaseURL)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad mode", func(c *Config) { c.Server.Mode = "fancy" }, "server.mode"},
		{"missing backend", func(c *Config) { c.Backend.BaseURL = "" }, "backend.base_url"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"missing redis", func(c *Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"bad period", func(c *Config) { c.Comparison.DefaultPeriod = "hourly" }, "default_period"},
		{"bad lookback", func(c *Config) { c.Comparison.DefaultLookback = 0 }, "default_lookback"},
		{"kafka enabled no brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"minio enabled no endpoint", func(c *Config) { c.MinIO.Enabled = true; c.MinIO.Endpoint = "" }, "minio.endpoint"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, minimalYAML))
			require.NoError(t, err)
			tc.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
