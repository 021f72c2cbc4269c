package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults registers every settings key with its platform default.
// Registration matters beyond the values themselves: Viper only resolves
// COMPISCOPE_* environment overrides for keys it knows about, so keys whose
// section is absent from the config file must still be declared here.  Keys
// without a sensible default are declared with their zero value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("backend.retry_max", 3)
	v.SetDefault("backend.retry_wait_min", 500*time.Millisecond)
	v.SetDefault("backend.retry_wait_max", 5*time.Second)

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.db_name", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.migration_path", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.default_ttl", 15*time.Minute)
	v.SetDefault("redis.key_prefix", "competiscope:")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "competiscope.audit")
	v.SetDefault("kafka.batch_timeout", time.Second)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "competiscope-exports")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.presign_expiry", 24*time.Hour)

	v.SetDefault("comparison.default_period", "daily")
	v.SetDefault("comparison.default_lookback", 30)
	v.SetDefault("comparison.change_log_limit", 10)
	v.SetDefault("comparison.graph_limit", 50)
	v.SetDefault("comparison.cache_ttl", 5*time.Minute)

	v.SetDefault("jobs.poll_delay", 8*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
