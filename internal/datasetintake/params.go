package datasetintake

import "mfsol/pkg/apperror"

// rejectUnknownKeys returns an error naming a key in raw not present in
// allowed. Unknown keys are rejected rather than silently ignored.
func rejectUnknownKeys(raw map[string]any, allowed map[string]bool) error {
	for k := range raw {
		if !allowed[k] {
			return apperror.NewWithField(apperror.CodeInvalidInput, "unrecognized parameter key", k)
		}
	}
	return nil
}

func getString(raw map[string]any, key, def string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func getInt(raw map[string]any, key string, def int) int {
	if v, ok := raw[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return def
}

func getFloat(raw map[string]any, key string, def float64) float64 {
	if v, ok := raw[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

func getBool(raw map[string]any, key string, def bool) bool {
	if v, ok := raw[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

var rosteringKeys = map[string]bool{
	"horizon_start": true, "horizon_days": true, "solver_time_limit": true,
	"allow_uncovered_demand": true, "penalty_uncovered": true, "weight_preference": true,
	"max_consecutive_days": true, "min_rest_hours": true, "max_night_shifts": true,
	"min_shifts_per_employee": true, "require_complete_weekends": true,
}

// ParseRosteringParams fills in defaults (min_rest_hours=11,
// max_consecutive_days=5) over the submitted opaque key/value set.
func ParseRosteringParams(raw map[string]any) (RosteringParams, error) {
	if err := rejectUnknownKeys(raw, rosteringKeys); err != nil {
		return RosteringParams{}, err
	}
	return RosteringParams{
		HorizonStart:             getString(raw, "horizon_start", ""),
		HorizonDays:              getInt(raw, "horizon_days", 7),
		SolverTimeLimit:          getInt(raw, "solver_time_limit", 60),
		AllowUncoveredDemand:     getBool(raw, "allow_uncovered_demand", true),
		PenaltyUncovered:         getFloat(raw, "penalty_uncovered", 1000),
		WeightPreference:         getFloat(raw, "weight_preference", 1),
		MaxConsecutiveDays:       getInt(raw, "max_consecutive_days", 5),
		MinRestHours:             getFloat(raw, "min_rest_hours", 11),
		MaxNightShifts:           getInt(raw, "max_night_shifts", 0),
		MinShiftsPerEmployee:     getInt(raw, "min_shifts_per_employee", 0),
		RequireCompleteWeekends: getBool(raw, "require_complete_weekends", false),
	}, nil
}

var routingKeys = map[string]bool{
	"time_limit": true, "speed_kmh": true, "use_depot_start": true,
}

// ParseRoutingParams fills in defaults over the submitted opaque
// key/value set.
func ParseRoutingParams(raw map[string]any) (RoutingParams, error) {
	if err := rejectUnknownKeys(raw, routingKeys); err != nil {
		return RoutingParams{}, err
	}
	return RoutingParams{
		TimeLimit:     getInt(raw, "time_limit", 60),
		SpeedKmh:      getFloat(raw, "speed_kmh", 40),
		UseDepotStart: getBool(raw, "use_depot_start", true),
	}, nil
}

var balancingKeys = map[string]bool{
	"optimization_mode": true, "cycle_time": true, "max_stations": true,
	"time_limit": true, "mip_gap": true,
}

// ParseBalancingParams fills in defaults over the submitted opaque
// key/value set.
func ParseBalancingParams(raw map[string]any) (BalancingParams, error) {
	if err := rejectUnknownKeys(raw, balancingKeys); err != nil {
		return BalancingParams{}, err
	}
	mode := getString(raw, "optimization_mode", "minimize_stations")
	if mode != "minimize_stations" && mode != "minimize_cycle_time" {
		return BalancingParams{}, apperror.NewWithField(apperror.CodeInvalidInput,
			"optimization_mode must be minimize_stations or minimize_cycle_time", "optimization_mode")
	}
	return BalancingParams{
		OptimizationMode: mode,
		CycleTime:        getFloat(raw, "cycle_time", 0),
		MaxStations:      getInt(raw, "max_stations", 10),
		TimeLimit:        getInt(raw, "time_limit", 60),
		MIPGap:           getFloat(raw, "mip_gap", 1e-4),
	}, nil
}

var seasonalKeys = map[string]bool{
	"initial_workers": true, "initial_stock": true, "hours_per_unit": true,
	"regular_hours": true, "max_overtime_hours": true, "salary": true,
	"overtime_rate": true, "material_cost": true, "storage_cost": true,
	"hire_cost": true, "layoff_cost": true, "desired_final_stock": true,
	"time_limit": true,
}

// ParseSeasonalParams fills in defaults over the submitted opaque
// key/value set (thirteen numeric plant/economics parameters).
func ParseSeasonalParams(raw map[string]any) (SeasonalParams, error) {
	if err := rejectUnknownKeys(raw, seasonalKeys); err != nil {
		return SeasonalParams{}, err
	}
	return SeasonalParams{
		InitialWorkers:    getInt(raw, "initial_workers", 0),
		InitialStock:      getFloat(raw, "initial_stock", 0),
		HoursPerUnit:      getFloat(raw, "hours_per_unit", 1),
		RegularHours:      getFloat(raw, "regular_hours", 160),
		MaxOvertimeHours:  getFloat(raw, "max_overtime_hours", 20),
		Salary:            getFloat(raw, "salary", 0),
		OvertimeRate:      getFloat(raw, "overtime_rate", 0),
		MaterialCost:      getFloat(raw, "material_cost", 0),
		StorageCost:       getFloat(raw, "storage_cost", 0),
		HireCost:          getFloat(raw, "hire_cost", 0),
		LayoffCost:        getFloat(raw, "layoff_cost", 0),
		DesiredFinalStock: getFloat(raw, "desired_final_stock", 0),
		TimeLimit:         getInt(raw, "time_limit", 60),
	}, nil
}
