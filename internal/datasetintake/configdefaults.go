package datasetintake

import "mfsol/pkg/config"

// WithRosteringDefaults returns a copy of raw with any key absent from the
// submission filled in from cfg, so a Dataset Source caller only needs to
// supply the parameters it wants to override; the rest fall back to the
// operator-configured planner defaults (§6 Parameter surface) instead of
// this package's own hardcoded literals.
func WithRosteringDefaults(raw map[string]any, cfg config.RosteringDefaults) map[string]any {
	merged := cloneParams(raw)
	setIfAbsent(merged, "allow_uncovered_demand", cfg.AllowUncoveredDemand)
	setIfAbsent(merged, "penalty_uncovered", cfg.PenaltyUncovered)
	setIfAbsent(merged, "weight_preference", cfg.WeightPreference)
	setIfAbsent(merged, "min_rest_hours", cfg.MinRestHours)
	setIfAbsent(merged, "max_consecutive_days", cfg.MaxConsecutiveDays)
	setIfAbsent(merged, "max_night_shifts", cfg.MaxNightShifts)
	setIfAbsent(merged, "min_shifts_per_employee", cfg.MinShiftsPerEmployee)
	setIfAbsent(merged, "require_complete_weekends", cfg.RequireCompleteWeekends)
	return merged
}

// WithRoutingDefaults is the routing analogue of WithRosteringDefaults.
func WithRoutingDefaults(raw map[string]any, cfg config.RoutingDefaults) map[string]any {
	merged := cloneParams(raw)
	setIfAbsent(merged, "speed_kmh", cfg.SpeedKmh)
	setIfAbsent(merged, "use_depot_start", cfg.UseDepotStart)
	return merged
}

// WithBalancingDefaults is the balancing analogue of WithRosteringDefaults.
func WithBalancingDefaults(raw map[string]any, cfg config.BalancingDefaults) map[string]any {
	merged := cloneParams(raw)
	if cfg.OptimizationMode != "" {
		setIfAbsent(merged, "optimization_mode", cfg.OptimizationMode)
	}
	if cfg.MaxStations > 0 {
		setIfAbsent(merged, "max_stations", cfg.MaxStations)
	}
	return merged
}

// WithSolverDefaults fills the common time_limit-style key shared by every
// planner's parameter surface from the operator's global solver config.
// key is the planner-specific time-limit parameter name ("solver_time_limit"
// for rostering, "time_limit" for the other three). For any key other than
// "solver_time_limit" it also fills "mip_gap", which only the balancing
// parameter surface accepts: ParseRoutingParams and ParseSeasonalParams
// reject a map produced this way as carrying an unrecognized key.
func WithSolverDefaults(raw map[string]any, key string, cfg config.SolverConfig) map[string]any {
	merged := cloneParams(raw)
	setIfAbsent(merged, key, cfg.TimeLimitSeconds)
	if key != "solver_time_limit" {
		setIfAbsent(merged, "mip_gap", cfg.MIPGap)
	}
	return merged
}

func cloneParams(raw map[string]any) map[string]any {
	merged := make(map[string]any, len(raw)+8)
	for k, v := range raw {
		merged[k] = v
	}
	return merged
}

func setIfAbsent(m map[string]any, key string, value any) {
	if _, present := m[key]; !present {
		m[key] = value
	}
}
