package datasetintake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfsol/pkg/config"
)

func TestWithRosteringDefaults_FillsAbsentKeysOnly(t *testing.T) {
	cfg := config.RosteringDefaults{
		AllowUncoveredDemand: false,
		PenaltyUncovered:     500,
		WeightPreference:     2,
		MinRestHours:         12,
		MaxConsecutiveDays:   4,
	}
	raw := map[string]any{"penalty_uncovered": 999.0}

	merged := WithRosteringDefaults(raw, cfg)

	assert.Equal(t, 999.0, merged["penalty_uncovered"], "explicit submission value must win over the config default")
	assert.Equal(t, false, merged["allow_uncovered_demand"])
	assert.Equal(t, 2.0, merged["weight_preference"])
	assert.Equal(t, 12, merged["min_rest_hours"])
	assert.Equal(t, 4, merged["max_consecutive_days"])

	params, err := ParseRosteringParams(merged)
	require.NoError(t, err)
	assert.Equal(t, 999.0, params.PenaltyUncovered)
	assert.Equal(t, 12.0, params.MinRestHours)
	assert.Equal(t, 4, params.MaxConsecutiveDays)
}

func TestWithRoutingDefaults_FillsAbsentKeysOnly(t *testing.T) {
	cfg := config.RoutingDefaults{SpeedKmh: 55, UseDepotStart: false}
	merged := WithRoutingDefaults(map[string]any{}, cfg)

	params, err := ParseRoutingParams(merged)
	require.NoError(t, err)
	assert.Equal(t, 55.0, params.SpeedKmh)
	assert.False(t, params.UseDepotStart)
}

func TestWithSolverDefaults_SetsPlannerTimeLimitKey(t *testing.T) {
	cfg := config.SolverConfig{TimeLimitSeconds: 45, MIPGap: 0.02}

	merged := WithSolverDefaults(map[string]any{}, "solver_time_limit", cfg)
	params, err := ParseRosteringParams(merged)
	require.NoError(t, err)
	assert.Equal(t, 45, params.SolverTimeLimit)

	merged = WithSolverDefaults(map[string]any{}, "time_limit", cfg)
	bparams, err := ParseBalancingParams(merged)
	require.NoError(t, err)
	assert.Equal(t, 45, bparams.TimeLimit)
	assert.Equal(t, 0.02, bparams.MIPGap)
}
