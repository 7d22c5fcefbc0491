package rostering

import (
	"testing"

	"mfsol/internal/datasetintake"
)

func tinyInstance(t *testing.T) *datasetintake.RosteringInstance {
	t.Helper()
	employees := []datasetintake.RawEmployee{
		{ID: "E01", SkillsRaw: "RN", CostPerHour: 30, MaxHours: 40},
		{ID: "E02", SkillsRaw: "RN|ICU", CostPerHour: 45, MaxHours: 40},
		{ID: "E03", SkillsRaw: "RN", CostPerHour: 32, MaxHours: 20},
		{ID: "D01", SkillsRaw: "MD", CostPerHour: 100, MaxHours: 50},
	}
	shifts := []datasetintake.RawShift{
		{ID: "S1", StartHour: 7, EndHour: 15, LengthHours: 8, Type: "day"},
		{ID: "S2", StartHour: 15, EndHour: 23, LengthHours: 8, Type: "day"},
		{ID: "S3", StartHour: 23, EndHour: 7, LengthHours: 8, Type: "night"},
	}
	var demand []datasetintake.DemandRow
	for day := 0; day < 7; day++ {
		demand = append(demand,
			datasetintake.DemandRow{Day: day, ShiftID: "S1", Skill: "RN", Required: 1},
			datasetintake.DemandRow{Day: day, ShiftID: "S2", Skill: "RN", Required: 1},
			datasetintake.DemandRow{Day: day, ShiftID: "S3", Skill: "ICU", Required: 1},
		)
	}
	demand = append(demand, datasetintake.DemandRow{Day: 3, ShiftID: "S1", Skill: "MD", Required: 1})

	inst, err := datasetintake.IntakeRostering(employees, shifts, demand, nil, map[string]any{"horizon_days": 7})
	if err != nil {
		t.Fatalf("IntakeRostering() error = %v", err)
	}
	return inst
}

func TestBuild_TinyRoster(t *testing.T) {
	inst := tinyInstance(t)

	m, idx, err := Build(inst)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if m.NumVars() == 0 {
		t.Fatal("expected at least one variable")
	}
	if len(idx.Assign) == 0 {
		t.Fatal("expected assignment variables to be indexed")
	}

	foundCoverage := false
	for _, c := range m.Constraints() {
		if c.Sense.String() == ">=" {
			foundCoverage = true
			break
		}
	}
	if !foundCoverage {
		t.Error("expected at least one coverage (>=) constraint")
	}
}

func TestBuild_SlackFixedZeroWhenUncoveredDisallowed(t *testing.T) {
	employees := []datasetintake.RawEmployee{{ID: "E01", SkillsRaw: "RN", CostPerHour: 30, MaxHours: 40}}
	shifts := []datasetintake.RawShift{{ID: "S1", LengthHours: 8, Type: "day"}}
	demand := []datasetintake.DemandRow{{Day: 0, ShiftID: "S1", Skill: "ICU", Required: 1}}

	inst, err := datasetintake.IntakeRostering(employees, shifts, demand, nil, map[string]any{
		"horizon_days": 1, "allow_uncovered_demand": false,
	})
	if err != nil {
		t.Fatalf("IntakeRostering() error = %v", err)
	}

	m, _, err := Build(inst)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	found := false
	for _, c := range m.Constraints() {
		if c.Name == "slack_zero_0_S1_ICU" {
			found = true
			if c.RHS != 0 {
				t.Errorf("slack_zero RHS = %v, want 0", c.RHS)
			}
		}
	}
	if !found {
		t.Error("expected a slack_zero constraint when allow_uncovered_demand is false")
	}
}

func TestGapHours_NightCrossingMidnight(t *testing.T) {
	night := datasetintake.Shift{ID: "S3", StartHour: 23, EndHour: 7, Type: "night"}
	morning := datasetintake.Shift{ID: "S1", StartHour: 7, EndHour: 15, Type: "day"}

	gap := gapHours(night, morning)
	if gap >= 11 {
		t.Errorf("gap = %v, expected < 11 hours (forward rotation territory)", gap)
	}
}
