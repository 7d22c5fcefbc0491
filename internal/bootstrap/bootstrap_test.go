package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfsol/internal/datasetintake"
	"mfsol/internal/runstore"
	"mfsol/pkg/cache"
	"mfsol/pkg/config"
)

// TestConfigDrivenCacheConstruction exercises the exact cache construction
// path Wire takes: config defaults -> cache.FromConfig -> cache.New ->
// runstore.NewRunCache, without requiring a live Postgres connection.
func TestConfigDrivenCacheConstruction(t *testing.T) {
	cfg, err := config.NewLoader(config.WithConfigPaths()).Load()
	require.NoError(t, err)

	cfg.Cache.Enabled = true
	cfg.Cache.Driver = cache.BackendMemory

	backend, err := cache.New(cache.FromConfig(&cfg.Cache))
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	rc := runstore.NewRunCache(backend, cfg.Cache.DefaultTTL)
	run := &runstore.Run{RunID: "run-1", Status: runstore.StatusOptimal}
	require.NoError(t, rc.SetRun(context.Background(), run, nil))

	got, _, ok := rc.GetRun(context.Background(), "run-1")
	require.True(t, ok)
	assert.Equal(t, run.RunID, got.RunID)
}

// TestConfigDrivenPlannerDefaults exercises the path from loaded config
// defaults through to a parsed, typed planner parameter set, the same
// handoff Wire's caller would use before calling datasetintake.IntakeRostering.
func TestConfigDrivenPlannerDefaults(t *testing.T) {
	cfg, err := config.NewLoader(config.WithConfigPaths()).Load()
	require.NoError(t, err)

	merged := datasetintake.WithRosteringDefaults(map[string]any{}, cfg.Rostering)
	merged = datasetintake.WithSolverDefaults(merged, "solver_time_limit", cfg.Solver)

	params, err := datasetintake.ParseRosteringParams(merged)
	require.NoError(t, err)
	assert.Equal(t, cfg.Solver.TimeLimitSeconds, params.SolverTimeLimit)
	assert.Equal(t, cfg.Rostering.MaxConsecutiveDays, params.MaxConsecutiveDays)
}
