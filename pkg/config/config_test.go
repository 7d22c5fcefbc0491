package config

import (
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				App:    AppConfig{Name: "test-planner"},
				Log:    LogConfig{Level: "info"},
				Solver: SolverConfig{TimeLimitSeconds: 30},
			},
			wantErr: false,
		},
		{
			name: "missing app name",
			cfg: Config{
				Log:    LogConfig{Level: "info"},
				Solver: SolverConfig{TimeLimitSeconds: 30},
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			cfg: Config{
				App:    AppConfig{Name: "test"},
				Log:    LogConfig{Level: "verbose"},
				Solver: SolverConfig{TimeLimitSeconds: 30},
			},
			wantErr: true,
		},
		{
			name: "valid debug level",
			cfg: Config{
				App:    AppConfig{Name: "test"},
				Log:    LogConfig{Level: "debug"},
				Solver: SolverConfig{TimeLimitSeconds: 30},
			},
			wantErr: false,
		},
		{
			name: "non-positive time limit",
			cfg: Config{
				App:    AppConfig{Name: "test"},
				Log:    LogConfig{Level: "info"},
				Solver: SolverConfig{TimeLimitSeconds: 0},
			},
			wantErr: true,
		},
		{
			name: "negative mip gap",
			cfg: Config{
				App:    AppConfig{Name: "test"},
				Log:    LogConfig{Level: "info"},
				Solver: SolverConfig{TimeLimitSeconds: 30, MIPGap: -0.01},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name   string
		cfg    DatabaseConfig
		expect string
	}{
		{
			name: "postgres",
			cfg: DatabaseConfig{
				Driver:   "postgres",
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
				SSLMode:  "disable",
			},
			expect: "host=localhost port=5432 user=user password=pass dbname=testdb sslmode=disable",
		},
		{
			name: "unknown",
			cfg: DatabaseConfig{
				Driver: "unknown",
			},
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.cfg.DSN()
			if dsn != tt.expect {
				t.Errorf("expected DSN %s, got %s", tt.expect, dsn)
			}
		})
	}
}

func TestCacheConfig_Address(t *testing.T) {
	cfg := CacheConfig{
		Host: "redis.local",
		Port: 6379,
	}

	addr := cfg.Address()
	if addr != "redis.local:6379" {
		t.Errorf("expected 'redis.local:6379', got %s", addr)
	}
}

func TestRosteringDefaults(t *testing.T) {
	cfg := RosteringDefaults{
		AllowUncoveredDemand: true,
		PenaltyUncovered:     1000.0,
		MinRestHours:         11,
		MaxConsecutiveDays:   6,
	}

	if !cfg.AllowUncoveredDemand {
		t.Error("expected uncovered demand to be allowed by default")
	}
	if cfg.MinRestHours != 11 {
		t.Errorf("expected min rest hours 11, got %d", cfg.MinRestHours)
	}
}

func TestRoutingDefaults(t *testing.T) {
	cfg := RoutingDefaults{
		SpeedKmh:      40.0,
		UseDepotStart: true,
	}

	if cfg.SpeedKmh != 40.0 {
		t.Errorf("expected speed 40.0, got %f", cfg.SpeedKmh)
	}
}

func TestBalancingDefaults(t *testing.T) {
	cfg := BalancingDefaults{
		OptimizationMode: "minimize_stations",
	}

	if cfg.OptimizationMode != "minimize_stations" {
		t.Errorf("expected mode minimize_stations, got %s", cfg.OptimizationMode)
	}
}
