// Package config defines all configuration structures for the competiscope
// service.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// BackendConfig holds connection parameters for the analytics backend whose
// REST surface this service consumes.
type BackendConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryMax     int           `mapstructure:"retry_max"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
}

// DatabaseConfig holds PostgreSQL connection parameters (report presets).
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters (response cache).
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds audit-event producer parameters.
type KafkaConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Brokers      []string `mapstructure:"brokers"`
	Topic        string   `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// MinIOConfig holds object-storage parameters for export artifacts.
type MinIOConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// ComparisonConfig holds comparison-orchestration tunables.
type ComparisonConfig struct {
	DefaultPeriod   string        `mapstructure:"default_period"` // daily | weekly | monthly
	DefaultLookback int           `mapstructure:"default_lookback"`
	ChangeLogLimit  int           `mapstructure:"change_log_limit"`
	GraphLimit      int           `mapstructure:"graph_limit"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

// JobsConfig holds async-job follow-up parameters.  Recompute and graph-sync
// triggers schedule one best-effort refresh after PollDelay; there is no
// completion signal and no backoff loop.
type JobsConfig struct {
	PollDelay time.Duration `mapstructure:"poll_delay"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
}

// Config is the root configuration structure for the service.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Backend    BackendConfig    `mapstructure:"backend"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Comparison ComparisonConfig `mapstructure:"comparison"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
	Log        LogConfig        `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("config: backend.base_url is required")
	}
	if c.Backend.RetryMax < 0 {
		return fmt.Errorf("config: backend.retry_max must be >= 0, got %d", c.Backend.RetryMax)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker when kafka is enabled")
	}
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when minio is enabled")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required when minio is enabled")
		}
	}

	switch c.Comparison.DefaultPeriod {
	case "daily", "weekly", "monthly":
	default:
		return fmt.Errorf("config: comparison.default_period %q is invalid; expected daily|weekly|monthly", c.Comparison.DefaultPeriod)
	}
	if c.Comparison.DefaultLookback < 1 {
		return fmt.Errorf("config: comparison.default_lookback must be >= 1, got %d", c.Comparison.DefaultLookback)
	}
	if c.Comparison.ChangeLogLimit < 1 {
		return fmt.Errorf("config: comparison.change_log_limit must be >= 1, got %d", c.Comparison.ChangeLogLimit)
	}
	if c.Comparison.GraphLimit < 1 {
		return fmt.Errorf("config: comparison.graph_limit must be >= 1, got %d", c.Comparison.GraphLimit)
	}

	if c.Jobs.PollDelay <= 0 {
		return fmt.Errorf("config: jobs.poll_delay must be positive, got %s", c.Jobs.PollDelay)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
