package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "mfsol" {
		t.Errorf("expected app name 'mfsol', got %s", cfg.App.Name)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Log.Level)
	}
	if cfg.Solver.TimeLimitSeconds != 60 {
		t.Errorf("expected solver time limit 60, got %d", cfg.Solver.TimeLimitSeconds)
	}
	if cfg.Solver.MaxWorkers != 4 {
		t.Errorf("expected max workers 4, got %d", cfg.Solver.MaxWorkers)
	}
	if cfg.Rostering.MinRestHours != 11 {
		t.Errorf("expected min rest hours 11, got %d", cfg.Rostering.MinRestHours)
	}
}

func TestLoader_LoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: custom-planner
  version: 2.0.0
  environment: staging
log:
  level: debug
solver:
  time_limit_seconds: 120
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader(WithConfigPaths(configPath))
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "custom-planner" {
		t.Errorf("expected app name 'custom-planner', got %s", cfg.App.Name)
	}
	if cfg.App.Version != "2.0.0" {
		t.Errorf("expected version '2.0.0', got %s", cfg.App.Version)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Log.Level)
	}
	if cfg.Solver.TimeLimitSeconds != 120 {
		t.Errorf("expected solver time limit 120, got %d", cfg.Solver.TimeLimitSeconds)
	}
}

func TestLoader_LoadFromEnv(t *testing.T) {
	os.Setenv("MFSOL_APP_NAME", "env-planner")
	os.Setenv("MFSOL_SOLVER_MAX_WORKERS", "8")
	defer func() {
		os.Unsetenv("MFSOL_APP_NAME")
		os.Unsetenv("MFSOL_SOLVER_MAX_WORKERS")
	}()

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-planner" {
		t.Errorf("expected app name 'env-planner', got %s", cfg.App.Name)
	}
	if cfg.Solver.MaxWorkers != 8 {
		t.Errorf("expected max workers 8, got %d", cfg.Solver.MaxWorkers)
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: file-planner
solver:
  max_workers: 2
`
	os.WriteFile(configPath, []byte(configContent), 0644)

	os.Setenv("MFSOL_APP_NAME", "env-override")
	defer os.Unsetenv("MFSOL_APP_NAME")

	cfg, err := NewLoader(WithConfigPaths(configPath)).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-override" {
		t.Errorf("expected env override, got %s", cfg.App.Name)
	}
	// Max workers should come from file since env doesn't set it
	if cfg.Solver.MaxWorkers != 2 {
		t.Errorf("expected max workers from file 2, got %d", cfg.Solver.MaxWorkers)
	}
}

func TestLoader_WithEnvPrefix(t *testing.T) {
	os.Setenv("CUSTOM_APP_NAME", "custom-prefix-planner")
	defer os.Unsetenv("CUSTOM_APP_NAME")

	cfg, err := NewLoader(WithEnvPrefix("CUSTOM_")).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "custom-prefix-planner" {
		t.Errorf("expected 'custom-prefix-planner', got %s", cfg.App.Name)
	}
}

func TestMustLoad_Success(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("MustLoad should not panic with valid config")
		}
	}()

	cfg := MustLoad()
	if cfg == nil {
		t.Error("expected non-nil config")
	}
}

func TestLoad_Simple(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg == nil {
		t.Error("expected non-nil config")
	}
}

func TestLoadWithName(t *testing.T) {
	cfg, err := LoadWithName("rostering-cli")
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if cfg.App.Name != "rostering-cli" {
		t.Errorf("expected app name 'rostering-cli', got %s", cfg.App.Name)
	}
}

func TestLoader_ConfigEnvVar(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-config.yaml")

	configContent := `
app:
  name: config-env-var-planner
`
	os.WriteFile(configPath, []byte(configContent), 0644)

	os.Setenv("CONFIG_PATH", configPath)
	defer os.Unsetenv("CONFIG_PATH")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "config-env-var-planner" {
		t.Errorf("expected 'config-env-var-planner', got %s", cfg.App.Name)
	}
}
