package datasetintake

import (
	"testing"

	"mfsol/pkg/apperror"
)

func TestIntakeRostering_Valid(t *testing.T) {
	employees := []RawEmployee{{ID: "E01", SkillsRaw: "RN", CostPerHour: 30, MaxHours: 40}}
	shifts := []RawShift{{ID: "S1", LengthHours: 8, Type: "day"}}
	demand := []DemandRow{{Day: 0, ShiftID: "S1", Skill: "RN", Required: 1}}

	inst, err := IntakeRostering(employees, shifts, demand, nil, map[string]any{"horizon_days": 7})
	if err != nil {
		t.Fatalf("IntakeRostering() error = %v", err)
	}
	if len(inst.Employees[0].Skills) != 1 || inst.Employees[0].Skills[0] != "RN" {
		t.Errorf("Skills = %v, want [RN]", inst.Employees[0].Skills)
	}
}

func TestIntakeRostering_DanglingDemandShift(t *testing.T) {
	_, err := IntakeRostering(nil, nil, []DemandRow{{ShiftID: "missing", Required: 1}}, nil, nil)
	if apperror.Code(err) != apperror.CodeInvalidInput {
		t.Fatalf("expected CodeInvalidInput, got %v", err)
	}
}

func TestIntakeRostering_UnknownParameterRejected(t *testing.T) {
	employees := []RawEmployee{{ID: "E01", SkillsRaw: "RN", CostPerHour: 30, MaxHours: 40}}
	_, err := IntakeRostering(employees, nil, nil, nil, map[string]any{"bogus": 1})
	if apperror.Code(err) != apperror.CodeInvalidInput {
		t.Fatalf("expected CodeInvalidInput for unknown parameter, got %v", err)
	}
}

func TestIntakeRouting_DurationExceedsWindow(t *testing.T) {
	tasks := []RawTask{{ID: "T1", Duration: 5, WindowStart: 8, WindowEnd: 10}}
	inspectors := []RawInspector{{ID: "I1", AvailStart: 8, AvailEnd: 16}}

	_, err := IntakeRouting(Location{}, inspectors, tasks, nil)
	if apperror.Code(err) != apperror.CodeInvalidInput {
		t.Fatalf("expected CodeInvalidInput for over-long task, got %v", err)
	}
}

func TestIntakeRouting_Valid(t *testing.T) {
	tasks := []RawTask{{ID: "T1", Duration: 1, WindowStart: 8, WindowEnd: 18}}
	inspectors := []RawInspector{{ID: "I1", AvailStart: 8, AvailEnd: 16}}

	inst, err := IntakeRouting(Location{X: 1, Y: 1}, inspectors, tasks, map[string]any{"speed_kmh": 50.0})
	if err != nil {
		t.Fatalf("IntakeRouting() error = %v", err)
	}
	if inst.Params.SpeedKmh != 50 {
		t.Errorf("SpeedKmh = %v, want 50", inst.Params.SpeedKmh)
	}
}

func TestIntakeBalancing_PrecedenceCycleRejected(t *testing.T) {
	tasks := []BalancingTask{{ID: "T1", Duration: 1}, {ID: "T2", Duration: 1}}
	prec := []Precedence{{Before: "T1", After: "T2"}, {Before: "T2", After: "T1"}}

	_, err := IntakeBalancing(tasks, prec, nil, nil, nil)
	if apperror.Code(err) != apperror.CodeInvalidInput {
		t.Fatalf("expected CodeInvalidInput for cyclic precedence, got %v", err)
	}
}

func TestIntakeBalancing_Valid(t *testing.T) {
	tasks := []BalancingTask{{ID: "T1", Duration: 8}, {ID: "T2", Duration: 12}}
	prec := []Precedence{{Before: "T1", After: "T2"}}

	inst, err := IntakeBalancing(tasks, prec, nil, nil, map[string]any{"max_stations": 4})
	if err != nil {
		t.Fatalf("IntakeBalancing() error = %v", err)
	}
	if inst.Params.MaxStations != 4 {
		t.Errorf("MaxStations = %d, want 4", inst.Params.MaxStations)
	}
}

func TestIntakeSeasonal_Valid(t *testing.T) {
	inst, err := IntakeSeasonal([4]float64{30000, 30000, 50000, 30000}, map[string]any{
		"hours_per_unit": 4.0, "regular_hours": 160.0, "initial_workers": 100,
	})
	if err != nil {
		t.Fatalf("IntakeSeasonal() error = %v", err)
	}
	monthly := inst.MonthlyDemand()
	if monthly[6] != 50000.0/3 {
		t.Errorf("monthly[6] = %v, want %v", monthly[6], 50000.0/3)
	}
}

func TestIntakeSeasonal_NegativeDemandRejected(t *testing.T) {
	_, err := IntakeSeasonal([4]float64{-1, 0, 0, 0}, map[string]any{"hours_per_unit": 1.0, "regular_hours": 1.0})
	if apperror.Code(err) != apperror.CodeInvalidInput {
		t.Fatalf("expected CodeInvalidInput for negative demand, got %v", err)
	}
}
