package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	analyticsapp "github.com/turtacn/competiscope/internal/application/analytics"
	comparisonapp "github.com/turtacn/competiscope/internal/application/comparison"
	exportapp "github.com/turtacn/competiscope/internal/application/export"
	presetapp "github.com/turtacn/competiscope/internal/application/preset"
	"github.com/turtacn/competiscope/internal/config"
	"github.com/turtacn/competiscope/internal/infrastructure/database/postgres"
	"github.com/turtacn/competiscope/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/competiscope/internal/infrastructure/database/redis"
	"github.com/turtacn/competiscope/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/competiscope/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/turtacn/competiscope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/competiscope/internal/infrastructure/storage/minio"
	httpserver "github.com/turtacn/competiscope/internal/interfaces/http"
	"github.com/turtacn/competiscope/internal/interfaces/http/handlers"
	"github.com/turtacn/competiscope/pkg/client"
	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// run assembles every layer and serves until the context is cancelled by
// SIGINT or SIGTERM.
func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}
	logger.Info("Starting apiserver",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)

	metrics := prommetrics.NewMetrics()

	backend, err := client.NewClient(cfg.Backend.BaseURL,
		client.WithTimeout(cfg.Backend.Timeout),
		client.WithRetryMax(cfg.Backend.RetryMax),
		client.WithRetryWait(cfg.Backend.RetryWaitMin, cfg.Backend.RetryWaitMax),
		client.WithLogger(clientLogger{logger.Named("backend")}),
	)
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}

	redisClient, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, logger,
		redis.WithPrefix(cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(cfg.Redis.DefaultTTL),
	)

	db, err := postgres.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer db.Close()
	if cfg.Database.MigrationPath != "" {
		if err := db.RunMigrations(cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	producer := kafka.NewNopProducer()
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(&cfg.Kafka, logger)
	}
	defer producer.Close()

	var artifacts minio.ArtifactStore
	if cfg.MinIO.Enabled {
		artifacts, err = minio.NewArtifactStore(ctx, &cfg.MinIO, logger)
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
	}

	comparisons := comparisonapp.NewService(backend.Analytics(), cache, producer, metrics, logger, cfg.Comparison)
	pager := comparisonapp.NewChangeLogPager(
		func(ctx context.Context, key comparisonapp.ChangeLogKey, cursor string, limit int) (*analytics.ChangeLogPage, error) {
			return backend.Changes().ChangeLog(ctx, key.CompanyID, key.Period, key.Filters, cursor, limit)
		},
		cfg.Comparison.ChangeLogLimit,
	)
	overviews := analyticsapp.NewOverviewService(backend.Analytics(), metrics, logger, cfg.Comparison.GraphLimit)
	jobs := analyticsapp.NewJobService(backend.Jobs(), comparisons, producer, logger, cfg.Jobs.PollDelay)
	presets := presetapp.NewService(repositories.NewPresetRepo(db.Pool(), logger), logger)
	exports := exportapp.NewService(comparisons, backend.Analytics(), presets, artifacts, producer, metrics, logger)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Comparison: handlers.NewComparisonHandler(comparisons),
		ChangeLog:  handlers.NewChangeLogHandler(pager, comparisons),
		Analytics:  handlers.NewAnalyticsHandler(overviews, jobs),
		Presets:    handlers.NewPresetHandler(presets, comparisons),
		Export:     handlers.NewExportHandler(exports),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"redis":    redisClient.Ping,
			"postgres": db.HealthCheck,
		}),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
		Metrics:        metrics,
		Mode:           cfg.Server.Mode,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := srv.Stop(context.Background()); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// clientLogger adapts the structured logger to the SDK's printf surface.
type clientLogger struct {
	log logging.Logger
}

func (l clientLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l clientLogger) Infof(format string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(format, args...))
}

func (l clientLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}
