// Package postgres manages the PostgreSQL connection pool and schema
// migrations.  The only local tables belong to report presets; all analytics
// data stays in the backend.
package postgres

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/competiscope/internal/config"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/competiscope/pkg/errors"
)

// Connection manages the pgx connection pool.
type Connection struct {
	pool   *pgxpool.Pool
	cfg    *config.DatabaseConfig
	logger logging.Logger
	once   sync.Once
}

// NewConnection opens a pgx pool against cfg and verifies it with a bounded
// ping.
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig, log logging.Logger) (*Connection, error) {
	poolCfg, err := pgxpool.ParseConfig(buildDSN(cfg, "postgres"))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to parse database config")
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to open database pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "database connection failed")
	}

	log.Info("Connected to PostgreSQL database",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName),
	)

	return &Connection{pool: pool, cfg: cfg, logger: log}, nil
}

// Pool returns the underlying pgx pool.
func (c *Connection) Pool() *pgxpool.Pool {
	return c.pool
}

// HealthCheck verifies the database connection status.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "database health check failed")
	}
	return nil
}

// Close shuts the pool down.  Safe to call more than once.
func (c *Connection) Close() {
	c.once.Do(func() {
		c.pool.Close()
		c.logger.Info("Closed PostgreSQL database connection")
	})
}

// RunMigrations applies the file-based migrations under migrationsDir.
func (c *Connection) RunMigrations(migrationsDir string) error {
	m, err := migrate.New("file://"+migrationsDir, buildDSN(c.cfg, "pgx5"))
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create migrate instance")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.CodeInternal, "failed to run migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		c.logger.Warn("Failed to get migration version", logging.Err(err))
	}

	c.logger.Info("Database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// buildDSN constructs the connection string with the given URL scheme
// ("postgres" for pgxpool, "pgx5" for golang-migrate).
func buildDSN(cfg *config.DatabaseConfig, scheme string) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   cfg.DBName,
	}

	q := u.Query()
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}
