// Package balancing builds the Model IR for the assembly-line balancing
// planner: task-to-station assignment, load/cycle variables, precedence
// via station index, and the full set of line-balancing constraint
// families, including station-symmetry breaking.
package balancing

import (
	"fmt"

	"mfsol/internal/datasetintake"
	"mfsol/internal/modelir"
)

// VarIndex exposes the handles the extractor needs.
type VarIndex struct {
	Assign map[assignKey]modelir.VarHandle // a[i,j]
	Used   map[int]modelir.VarHandle       // u[j]
	Load   map[int]modelir.VarHandle       // load[j]
	Cycle  modelir.VarHandle
	Stations int
}

type assignKey struct {
	Task    string
	Station int
}

// Build translates a validated balancing instance into a Model IR.
func Build(inst *datasetintake.BalancingInstance) (*modelir.Model, *VarIndex, error) {
	m := modelir.NewModel("balancing")
	idx := &VarIndex{
		Assign: make(map[assignKey]modelir.VarHandle), Used: make(map[int]modelir.VarHandle),
		Load: make(map[int]modelir.VarHandle), Stations: inst.Params.MaxStations,
	}

	maxDuration := 0.0
	for _, t := range inst.Tasks {
		if t.Duration > maxDuration {
			maxDuration = t.Duration
		}
	}

	for _, t := range inst.Tasks {
		for j := 1; j <= inst.Params.MaxStations; j++ {
			h, err := m.AddVar(fmt.Sprintf("a_%s_%d", t.ID, j), modelir.Binary, 0, 0)
			if err != nil {
				return nil, nil, err
			}
			idx.Assign[assignKey{t.ID, j}] = h
		}
	}
	for j := 1; j <= inst.Params.MaxStations; j++ {
		uh, err := m.AddVar(fmt.Sprintf("u_%d", j), modelir.Binary, 0, 0)
		if err != nil {
			return nil, nil, err
		}
		idx.Used[j] = uh

		lh, err := m.AddVar(fmt.Sprintf("load_%d", j), modelir.Continuous, 0, 0)
		if err != nil {
			return nil, nil, err
		}
		idx.Load[j] = lh
	}

	ch, err := m.AddVar("cycle", modelir.Continuous, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	idx.Cycle = ch

	if err := addExactlyOneStation(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addPrecedence(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addLoadDefinition(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addCycleBound(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addStationUsedLinking(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addCycleTimePolicy(m, idx, inst, maxDuration); err != nil {
		return nil, nil, err
	}
	if err := addSkillAvailability(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addIncompatibility(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addSymmetryBreaking(m, idx, inst); err != nil {
		return nil, nil, err
	}

	if err := addObjective(m, idx, inst); err != nil {
		return nil, nil, err
	}

	m.SetParameter("time_limit_seconds", inst.Params.TimeLimit)
	m.SetParameter("mip_gap", inst.Params.MIPGap)
	return m, idx, nil
}

// addExactlyOneStation is constraint family 1.
func addExactlyOneStation(m *modelir.Model, idx *VarIndex, inst *datasetintake.BalancingInstance) error {
	for _, t := range inst.Tasks {
		expr := modelir.Expr{}
		for j := 1; j <= inst.Params.MaxStations; j++ {
			expr = append(expr, modelir.Term{Coef: 1, Var: idx.Assign[assignKey{t.ID, j}]})
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("one_station_%s", t.ID), expr, modelir.EQ, 1); err != nil {
			return err
		}
	}
	return nil
}

// addPrecedence is constraint family 2: Σ_j j·a[p,j] ≤ Σ_j j·a[q,j].
func addPrecedence(m *modelir.Model, idx *VarIndex, inst *datasetintake.BalancingInstance) error {
	for i, p := range inst.Precedences {
		expr := modelir.Expr{}
		for j := 1; j <= inst.Params.MaxStations; j++ {
			expr = append(expr, modelir.Term{Coef: float64(j), Var: idx.Assign[assignKey{p.Before, j}]})
			expr = append(expr, modelir.Term{Coef: -float64(j), Var: idx.Assign[assignKey{p.After, j}]})
		}
		name := fmt.Sprintf("precedence_%d_%s_%s", i, p.Before, p.After)
		if err := m.AddLinearConstraint(name, expr, modelir.LE, 0); err != nil {
			return err
		}
	}
	return nil
}

// addLoadDefinition is constraint family 3: load[j] >= Σ_i duration_i·a[i,j].
func addLoadDefinition(m *modelir.Model, idx *VarIndex, inst *datasetintake.BalancingInstance) error {
	for j := 1; j <= inst.Params.MaxStations; j++ {
		expr := modelir.Expr{{Coef: 1, Var: idx.Load[j]}}
		for _, t := range inst.Tasks {
			expr = append(expr, modelir.Term{Coef: -t.Duration, Var: idx.Assign[assignKey{t.ID, j}]})
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("load_def_%d", j), expr, modelir.GE, 0); err != nil {
			return err
		}
	}
	return nil
}

// addCycleBound is constraint family 4: load[j] <= cycle.
func addCycleBound(m *modelir.Model, idx *VarIndex, inst *datasetintake.BalancingInstance) error {
	for j := 1; j <= inst.Params.MaxStations; j++ {
		expr := modelir.Expr{{Coef: 1, Var: idx.Load[j]}, {Coef: -1, Var: idx.Cycle}}
		if err := m.AddLinearConstraint(fmt.Sprintf("cycle_bound_%d", j), expr, modelir.LE, 0); err != nil {
			return err
		}
	}
	return nil
}

// addStationUsedLinking is constraint family 5: Σ_i a[i,j] <= |tasks|·u[j].
func addStationUsedLinking(m *modelir.Model, idx *VarIndex, inst *datasetintake.BalancingInstance) error {
	numTasks := float64(len(inst.Tasks))
	for j := 1; j <= inst.Params.MaxStations; j++ {
		expr := modelir.Expr{}
		for _, t := range inst.Tasks {
			expr = append(expr, modelir.Term{Coef: 1, Var: idx.Assign[assignKey{t.ID, j}]})
		}
		expr = append(expr, modelir.Term{Coef: -numTasks, Var: idx.Used[j]})
		if err := m.AddLinearConstraint(fmt.Sprintf("station_used_%d", j), expr, modelir.LE, 0); err != nil {
			return err
		}
	}
	return nil
}

// addCycleTimePolicy is constraint family 6.
func addCycleTimePolicy(m *modelir.Model, idx *VarIndex, inst *datasetintake.BalancingInstance, maxDuration float64) error {
	if inst.Params.OptimizationMode == "minimize_stations" && inst.Params.CycleTime > 0 {
		return m.AddLinearConstraint("cycle_fixed", modelir.Expr{{Coef: 1, Var: idx.Cycle}}, modelir.EQ, inst.Params.CycleTime)
	}
	return m.AddLinearConstraint("cycle_min_duration", modelir.Expr{{Coef: 1, Var: idx.Cycle}}, modelir.GE, maxDuration)
}

// addSkillAvailability is constraint family 7: a[i,j] = 0 when station j
// does not cover all skills required by task i. A station absent from
// StationSkills covers every skill.
func addSkillAvailability(m *modelir.Model, idx *VarIndex, inst *datasetintake.BalancingInstance) error {
	for _, t := range inst.Tasks {
		for j := 1; j <= inst.Params.MaxStations; j++ {
			covered, known := inst.StationSkills[j]
			if !known {
				continue // station covers every skill
			}
			if coversAll(covered, t.RequiredSkills) {
				continue
			}
			h := idx.Assign[assignKey{t.ID, j}]
			if err := m.AddLinearConstraint(fmt.Sprintf("skill_%s_%d", t.ID, j), modelir.Expr{{Coef: 1, Var: h}}, modelir.LE, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func coversAll(covered, required []string) bool {
	set := make(map[string]bool, len(covered))
	for _, s := range covered {
		set[s] = true
	}
	for _, r := range required {
		if !set[r] {
			return false
		}
	}
	return true
}

// addIncompatibility is constraint family 8.
func addIncompatibility(m *modelir.Model, idx *VarIndex, inst *datasetintake.BalancingInstance) error {
	for i, inc := range inst.Incompatibilities {
		for j := 1; j <= inst.Params.MaxStations; j++ {
			a := idx.Assign[assignKey{inc.A, j}]
			b := idx.Assign[assignKey{inc.B, j}]
			name := fmt.Sprintf("incompat_%d_%d", i, j)
			if err := m.AddLinearConstraint(name, modelir.Expr{{Coef: 1, Var: a}, {Coef: 1, Var: b}}, modelir.LE, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// addSymmetryBreaking is constraint family 9: u[j] >= u[j+1].
func addSymmetryBreaking(m *modelir.Model, idx *VarIndex, inst *datasetintake.BalancingInstance) error {
	for j := 1; j < inst.Params.MaxStations; j++ {
		expr := modelir.Expr{{Coef: 1, Var: idx.Used[j]}, {Coef: -1, Var: idx.Used[j+1]}}
		if err := m.AddLinearConstraint(fmt.Sprintf("symmetry_%d", j), expr, modelir.GE, 0); err != nil {
			return err
		}
	}
	return nil
}

// addObjective minimizes station count or cycle time, per caller's choice.
func addObjective(m *modelir.Model, idx *VarIndex, inst *datasetintake.BalancingInstance) error {
	if inst.Params.OptimizationMode == "minimize_cycle_time" {
		return m.SetObjective(modelir.Expr{{Coef: 1, Var: idx.Cycle}}, modelir.Minimize)
	}
	expr := modelir.Expr{}
	for j := 1; j <= inst.Params.MaxStations; j++ {
		expr = append(expr, modelir.Term{Coef: 1, Var: idx.Used[j]})
	}
	return m.SetObjective(expr, modelir.Minimize)
}
