// Package bootstrap assembles the ambient stack (config, logging, tracing,
// metrics, database, cache) into a ready-to-use Run Coordinator: load
// config, init logger, init telemetry, init metrics, connect database, run
// migrations, construct the repository and service. It stops short of
// standing up a transport server; the Coordinator returned here is handed
// to whatever sync or async driver the caller embeds it in.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mfsol/internal/runcoordinator"
	"mfsol/internal/runstore"
	"mfsol/internal/solverbackend/gonumbb"
	"mfsol/migrations"
	"mfsol/pkg/cache"
	"mfsol/pkg/config"
	"mfsol/pkg/database"
	"mfsol/pkg/logger"
	"mfsol/pkg/metrics"
	"mfsol/pkg/telemetry"
)

// App holds every long-lived handle Wire constructs, so the caller can
// shut them down in reverse order of acquisition.
type App struct {
	Config      *config.Config
	Coordinator *runcoordinator.Coordinator
	DB          *database.PostgresDB
	Telemetry   *telemetry.Provider

	RunCache *runstore.RunCache
}

// Wire loads configuration, initializes logging/tracing/metrics, connects
// to Postgres, applies migrations when enabled, and returns a Coordinator
// backed by a cache-aside Run Store. The caller must call App.Close when
// done.
func Wire(ctx context.Context, opts ...config.LoaderOption) (*App, error) {
	cfg, err := config.NewLoader(opts...).Load()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load config: %w", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	var tp *telemetry.Provider
	if cfg.Tracing.Enabled {
		tp, err = telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("failed to init telemetry", "error", err)
		}
	}

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	if err := prometheus.Register(metrics.NewRuntimeCollector(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)); err != nil {
		logger.Log.Warn("failed to register runtime collector", "error", err)
	}

	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect to database: %w", err)
	}

	if err := database.RunMigrations(ctx, db.Pool(), &cfg.Database, migrations.PostgresMigrations, "postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap: run migrations: %w", err)
	}

	store := runstore.NewPostgresRunStore(db)

	var runCache *runstore.RunCache
	var coordinatorStore runstore.RunStore = store
	if cfg.Cache.Enabled {
		backend, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("bootstrap: construct cache: %w", err)
		}
		runCache = runstore.NewRunCache(backend, cfg.Cache.DefaultTTL)
		coordinatorStore = runstore.NewCachingRunStore(store, runCache)
	}

	solver := gonumbb.New()

	coordCfg := runcoordinator.Config{MaxWorkers: cfg.Solver.MaxWorkers}
	coord := runcoordinator.New(coordinatorStore, solver, coordCfg, logger.Log)

	return &App{Config: cfg, Coordinator: coord, DB: db, Telemetry: tp, RunCache: runCache}, nil
}

// Close flushes the tracer provider and releases the database connection,
// in that order (solver backend and coordinator hold no external resources
// to release; Coordinator.Stop is the caller's responsibility since it
// drains in-flight runs rather than merely releasing a handle).
func (a *App) Close(ctx context.Context) error {
	if a.Telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
			slog.Default().Warn("failed to shutdown telemetry", "error", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
	return nil
}
