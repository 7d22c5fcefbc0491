package extractor

import (
	"testing"

	"mfsol/internal/datasetintake"
	"mfsol/internal/formulation/rostering"
	"mfsol/internal/modelir"
)

func TestRostering_ReconstructsAssignedShift(t *testing.T) {
	employees := []datasetintake.RawEmployee{{ID: "E01", SkillsRaw: "RN", CostPerHour: 30, MaxHours: 40}}
	shifts := []datasetintake.RawShift{{ID: "S1", StartHour: 7, EndHour: 15, LengthHours: 8, Type: "day"}}
	demand := []datasetintake.DemandRow{{Day: 0, ShiftID: "S1", Skill: "RN", Required: 1}}

	inst, err := datasetintake.IntakeRostering(employees, shifts, demand, nil, map[string]any{
		"horizon_days": 1, "horizon_start": "2026-01-05",
	})
	if err != nil {
		t.Fatalf("IntakeRostering() error = %v", err)
	}

	_, idx, err := rostering.Build(inst)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	primal := make(map[modelir.VarHandle]float64)
	var assigned modelir.VarHandle
	for key, h := range idx.Assign {
		if key.Employee == "E01" && key.Day == 0 && key.Shift == "S1" {
			assigned = h
		}
	}
	primal[assigned] = 1

	sol := Rostering(inst, idx, modelir.Result{Status: modelir.StatusOptimal, Primal: primal})

	if len(sol.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(sol.Entries))
	}
	if sol.Entries[0].Date != "2026-01-05" {
		t.Errorf("Date = %q, want 2026-01-05", sol.Entries[0].Date)
	}
	if sol.Costs.LaborCost != 240 {
		t.Errorf("LaborCost = %v, want 240", sol.Costs.LaborCost)
	}
}
