package routing

import (
	"testing"

	"mfsol/internal/datasetintake"
)

func twoTaskInstance(t *testing.T) *datasetintake.RoutingInstance {
	t.Helper()
	inspectors := []datasetintake.RawInspector{
		{ID: "I1", Location: datasetintake.Location{X: 50, Y: 50}, Skills: []string{"electrical"}, AvailStart: 8, AvailEnd: 16},
	}
	tasks := []datasetintake.RawTask{
		{ID: "T1", Location: datasetintake.Location{X: 10, Y: 10}, Duration: 1, RequiredSkill: "electrical", WindowStart: 8, WindowEnd: 18},
		{ID: "T2", Location: datasetintake.Location{X: 20, Y: 20}, Duration: 1, RequiredSkill: "electrical", WindowStart: 8, WindowEnd: 18},
	}
	inst, err := datasetintake.IntakeRouting(datasetintake.Location{X: 50, Y: 50}, inspectors, tasks, map[string]any{
		"speed_kmh": 40.0, "use_depot_start": false,
	})
	if err != nil {
		t.Fatalf("IntakeRouting() error = %v", err)
	}
	return inst
}

func TestBuild_SingleAssignmentPerTask(t *testing.T) {
	inst := twoTaskInstance(t)

	m, idx, err := Build(inst)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	found := 0
	for _, c := range m.Constraints() {
		if c.Name == "single_assign_1" || c.Name == "single_assign_2" {
			found++
		}
	}
	if found != 2 {
		t.Errorf("expected 2 single_assign constraints, found %d", found)
	}
	if len(idx.Arc) == 0 {
		t.Error("expected arc variables to be indexed")
	}
}

func TestBuild_SkillIncompatibilityForcesVisitToZero(t *testing.T) {
	inspectors := []datasetintake.RawInspector{
		{ID: "I1", Location: datasetintake.Location{}, Skills: []string{"plumbing"}, AvailStart: 8, AvailEnd: 16},
	}
	tasks := []datasetintake.RawTask{
		{ID: "T1", Duration: 1, RequiredSkill: "electrical", WindowStart: 8, WindowEnd: 18},
	}
	inst, err := datasetintake.IntakeRouting(datasetintake.Location{}, inspectors, tasks, map[string]any{"speed_kmh": 40.0})
	if err != nil {
		t.Fatalf("IntakeRouting() error = %v", err)
	}

	m, _, err := Build(inst)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	found := false
	for _, c := range m.Constraints() {
		if c.Name == "skill_1_0" {
			found = true
			if c.RHS != 0 {
				t.Errorf("skill constraint RHS = %v, want 0", c.RHS)
			}
		}
	}
	if !found {
		t.Error("expected a skill_1_0 constraint forcing y[1,0] to zero")
	}
}

func TestDistance_ZeroOnDiagonal(t *testing.T) {
	inst := twoTaskInstance(t)
	if d := distance(inst, 0, 1, 1); d != 0 {
		t.Errorf("distance(i,i) = %v, want 0", d)
	}
}
