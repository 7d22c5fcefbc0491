// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure for the MFSOL core.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`

	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Solver   SolverConfig   `koanf:"solver"`

	Rostering RosteringDefaults `koanf:"rostering"`
	Routing   RoutingDefaults   `koanf:"routing"`
	Balancing BalancingDefaults `koanf:"balancing"`
}

// AppConfig holds application-wide settings.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // path to the log file
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // number of backups
	MaxAge     int    `koanf:"max_age"`     // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig holds database settings.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // postgres
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	MigrationsPath  string        `koanf:"migrations_path"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN returns the connection string.
func (d DatabaseConfig) DSN() string {
	switch strings.ToLower(d.Driver) {
	case "postgres", "postgresql":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
		)
	default:
		return ""
	}
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// Address returns the cache address.
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SolverConfig carries the advisory parameters forwarded to every Model IR
// unless a submission overrides them, plus the worker pool sizing for the
// Run Coordinator.
type SolverConfig struct {
	TimeLimitSeconds int     `koanf:"time_limit_seconds"`
	MIPGap           float64 `koanf:"mip_gap"`
	Silent           bool    `koanf:"silent"`
	MaxWorkers       int     `koanf:"max_workers"`
}

// RosteringDefaults holds the fallback values applied when a rostering
// submission omits them.
type RosteringDefaults struct {
	AllowUncoveredDemand    bool    `koanf:"allow_uncovered_demand"`
	PenaltyUncovered        float64 `koanf:"penalty_uncovered"`
	WeightPreference        float64 `koanf:"weight_preference"`
	MinRestHours            int     `koanf:"min_rest_hours"`
	MaxConsecutiveDays      int     `koanf:"max_consecutive_days"`
	MaxNightShifts          int     `koanf:"max_night_shifts"`
	MinShiftsPerEmployee    int     `koanf:"min_shifts_per_employee"`
	RequireCompleteWeekends bool    `koanf:"require_complete_weekends"`
}

// RoutingDefaults holds the fallback values for a routing submission.
type RoutingDefaults struct {
	SpeedKmh      float64 `koanf:"speed_kmh"`
	UseDepotStart bool    `koanf:"use_depot_start"`
}

// BalancingDefaults holds the fallback values for a balancing submission.
type BalancingDefaults struct {
	OptimizationMode string `koanf:"optimization_mode"` // minimize_stations, minimize_cycle_time
	MaxStations      int    `koanf:"max_stations"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Solver.TimeLimitSeconds <= 0 {
		errs = append(errs, "solver.time_limit_seconds must be positive")
	}

	if c.Solver.MIPGap < 0 {
		errs = append(errs, "solver.mip_gap must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment reports whether the environment is development.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
