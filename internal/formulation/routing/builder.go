// Package routing builds the Model IR for the inspector VRP planner: arc and
// visit variables per inspector, per-inspector distance matrices, Big-M
// time sequencing, and the full set of routing constraint families.
package routing

import (
	"fmt"
	"math"

	"mfsol/internal/datasetintake"
	"mfsol/internal/modelir"
)

// BigM is the sequencing constant: tight for a 24-hour clock, and a known
// source of numerical (not structural) infeasibility.
const BigM = 1e4

// node 0 is the per-inspector start node; nodes 1..n-1 are tasks in the
// order they appear in the instance.

// VarIndex exposes the handles the extractor needs.
type VarIndex struct {
	Arc      map[arcKey]modelir.VarHandle   // x[i,j,k]
	Visit    map[visitKey]modelir.VarHandle // y[i,k]
	Arrival  map[visitKey]modelir.VarHandle // T[i,k]
	MaxTasks modelir.VarHandle
	Tasks    []datasetintake.Task // node i (1-based) -> task
}

type arcKey struct{ I, J, K int }
type visitKey struct{ I, K int }

// NodeLocation returns the coordinate of node i for inspector k: node 0 is
// the depot when UseDepotStart is set, otherwise the inspector's own home
// location; nodes 1..n-1 are tasks.
func NodeLocation(inst *datasetintake.RoutingInstance, k, node int) datasetintake.Location {
	if node == 0 {
		if inst.Params.UseDepotStart {
			return inst.Depot
		}
		return inst.Inspectors[k].Location
	}
	return inst.Tasks[node-1].Location
}

func euclidean(a, b datasetintake.Location) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// distance returns dist[k][i][j]: euclidean distance over speed, zero on
// the diagonal.
func distance(inst *datasetintake.RoutingInstance, k, i, j int) float64 {
	if i == j {
		return 0
	}
	return euclidean(NodeLocation(inst, k, i), NodeLocation(inst, k, j)) / inst.Params.SpeedKmh
}

// Build translates a validated routing instance into a Model IR.
func Build(inst *datasetintake.RoutingInstance) (*modelir.Model, *VarIndex, error) {
	m := modelir.NewModel("routing")
	idx := &VarIndex{
		Arc: make(map[arcKey]modelir.VarHandle), Visit: make(map[visitKey]modelir.VarHandle),
		Arrival: make(map[visitKey]modelir.VarHandle), Tasks: inst.Tasks,
	}
	n := 1 + len(inst.Tasks)
	numInspectors := len(inst.Inspectors)

	for k := 0; k < numInspectors; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				h, err := m.AddVar(fmt.Sprintf("x_%d_%d_%d", i, j, k), modelir.Binary, 0, 0)
				if err != nil {
					return nil, nil, err
				}
				idx.Arc[arcKey{i, j, k}] = h
			}
			yh, err := m.AddVar(fmt.Sprintf("y_%d_%d", i, k), modelir.Binary, 0, 0)
			if err != nil {
				return nil, nil, err
			}
			idx.Visit[visitKey{i, k}] = yh

			th, err := m.AddVar(fmt.Sprintf("T_%d_%d", i, k), modelir.Continuous, 0, 24)
			if err != nil {
				return nil, nil, err
			}
			idx.Arrival[visitKey{i, k}] = th
		}
	}
	maxTasksH, err := m.AddVar("max_tasks", modelir.Continuous, 0, float64(n-1))
	if err != nil {
		return nil, nil, err
	}
	idx.MaxTasks = maxTasksH

	if err := addSingleAssignment(m, idx, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addFlowConservation(m, idx, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addDepotFlow(m, idx, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addSkillCompatibility(m, idx, inst, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addSequencing(m, idx, inst, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addTimeWindows(m, idx, inst, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addAvailabilityWindows(m, idx, inst, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addDurationWithinAvailability(m, idx, inst, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addMaxWorkHours(m, idx, inst, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addNoSelfLoops(m, idx, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addLoadBalance(m, idx, n, numInspectors); err != nil {
		return nil, nil, err
	}
	if err := addObjective(m, idx, inst, n, numInspectors); err != nil {
		return nil, nil, err
	}

	m.SetParameter("time_limit_seconds", inst.Params.TimeLimit)
	return m, idx, nil
}

// addSingleAssignment is constraint family 1.
func addSingleAssignment(m *modelir.Model, idx *VarIndex, n, numInspectors int) error {
	for i := 1; i < n; i++ {
		expr := modelir.Expr{}
		for k := 0; k < numInspectors; k++ {
			expr = append(expr, modelir.Term{Coef: 1, Var: idx.Visit[visitKey{i, k}]})
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("single_assign_%d", i), expr, modelir.EQ, 1); err != nil {
			return err
		}
	}
	return nil
}

// addFlowConservation is constraint family 2.
func addFlowConservation(m *modelir.Model, idx *VarIndex, n, numInspectors int) error {
	for k := 0; k < numInspectors; k++ {
		for i := 1; i < n; i++ {
			out := modelir.Expr{}
			in := modelir.Expr{}
			for j := 0; j < n; j++ {
				out = append(out, modelir.Term{Coef: 1, Var: idx.Arc[arcKey{i, j, k}]})
				in = append(in, modelir.Term{Coef: 1, Var: idx.Arc[arcKey{j, i, k}]})
			}
			y := idx.Visit[visitKey{i, k}]
			outExpr := append(out, modelir.Term{Coef: -1, Var: y})
			inExpr := append(in, modelir.Term{Coef: -1, Var: y})
			if err := m.AddLinearConstraint(fmt.Sprintf("flow_out_%d_%d", i, k), outExpr, modelir.EQ, 0); err != nil {
				return err
			}
			if err := m.AddLinearConstraint(fmt.Sprintf("flow_in_%d_%d", i, k), inExpr, modelir.EQ, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// addDepotFlow is constraint family 3.
func addDepotFlow(m *modelir.Model, idx *VarIndex, n, numInspectors int) error {
	for k := 0; k < numInspectors; k++ {
		nk := modelir.Expr{}
		for i := 1; i < n; i++ {
			nk = append(nk, modelir.Term{Coef: 1, Var: idx.Visit[visitKey{i, k}]})
		}

		outDepot := modelir.Expr{}
		inDepot := modelir.Expr{}
		for j := 1; j < n; j++ {
			outDepot = append(outDepot, modelir.Term{Coef: 1, Var: idx.Arc[arcKey{0, j, k}]})
			inDepot = append(inDepot, modelir.Term{Coef: 1, Var: idx.Arc[arcKey{j, 0, k}]})
		}
		outExpr := append(outDepot, negate(nk)...)
		inExpr := append(inDepot, negate(nk)...)
		if err := m.AddLinearConstraint(fmt.Sprintf("depot_out_%d", k), outExpr, modelir.EQ, 0); err != nil {
			return err
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("depot_in_%d", k), inExpr, modelir.EQ, 0); err != nil {
			return err
		}
	}
	return nil
}

func negate(e modelir.Expr) modelir.Expr {
	out := make(modelir.Expr, len(e))
	for i, t := range e {
		out[i] = modelir.Term{Coef: -t.Coef, Var: t.Var}
	}
	return out
}

// addSkillCompatibility is constraint family 4.
func addSkillCompatibility(m *modelir.Model, idx *VarIndex, inst *datasetintake.RoutingInstance, n, numInspectors int) error {
	for k := 0; k < numInspectors; k++ {
		for i := 1; i < n; i++ {
			task := inst.Tasks[i-1]
			if hasSkill(inst.Inspectors[k].Skills, task.RequiredSkill) {
				continue
			}
			y := idx.Visit[visitKey{i, k}]
			if err := m.AddLinearConstraint(fmt.Sprintf("skill_%d_%d", i, k), modelir.Expr{{Coef: 1, Var: y}}, modelir.LE, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasSkill(skills []string, want string) bool {
	for _, s := range skills {
		if s == want {
			return true
		}
	}
	return false
}

// addSequencing is constraint family 5: the Big-M time sequencing.
func addSequencing(m *modelir.Model, idx *VarIndex, inst *datasetintake.RoutingInstance, n, numInspectors int) error {
	for k := 0; k < numInspectors; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j || j == 0 {
					continue // return edges do not bind T[0]
				}
				x := idx.Arc[arcKey{i, j, k}]
				tj := idx.Arrival[visitKey{j, k}]
				dist := distance(inst, k, i, j)

				var expr modelir.Expr
				var rhs float64
				if i == 0 {
					// T[j,k] >= dist[k][0][j] - M*(1 - x[0,j,k])
					expr = modelir.Expr{{Coef: 1, Var: tj}, {Coef: -BigM, Var: x}}
					rhs = dist - BigM
				} else {
					ti := idx.Arrival[visitKey{i, k}]
					duration := inst.Tasks[i-1].Duration
					expr = modelir.Expr{{Coef: 1, Var: tj}, {Coef: -1, Var: ti}, {Coef: -BigM, Var: x}}
					rhs = duration + dist - BigM
				}
				name := fmt.Sprintf("seq_%d_%d_%d", i, j, k)
				if err := m.AddLinearConstraint(name, expr, modelir.GE, rhs); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// addTimeWindows is constraint family 6.
func addTimeWindows(m *modelir.Model, idx *VarIndex, inst *datasetintake.RoutingInstance, n, numInspectors int) error {
	for k := 0; k < numInspectors; k++ {
		for i := 1; i < n; i++ {
			task := inst.Tasks[i-1]
			ti := idx.Arrival[visitKey{i, k}]
			y := idx.Visit[visitKey{i, k}]

			if err := fixTimeWindowStart(m, ti, y, task.WindowStart, i, k); err != nil {
				return err
			}
			if err := fixTimeWindowEnd(m, ti, y, task.WindowEnd, task.Duration, i, k); err != nil {
				return err
			}
		}
	}
	return nil
}

// fixTimeWindowStart adds T[i,k] + M*y[i,k] >= tw_start_i + M, i.e.
// T[i,k] >= tw_start_i - M*(1 - y[i,k]).
func fixTimeWindowStart(m *modelir.Model, ti, y modelir.VarHandle, start float64, i, k int) error {
	expr := modelir.Expr{{Coef: 1, Var: ti}, {Coef: BigM, Var: y}}
	return m.AddLinearConstraint(fmt.Sprintf("tw_lb_%d_%d", i, k), expr, modelir.GE, start+BigM)
}

// fixTimeWindowEnd adds T[i,k] + duration_i - M*y[i,k] <= tw_end_i - M, i.e.
// T[i,k] + duration_i <= tw_end_i + M*(1 - y[i,k]).
func fixTimeWindowEnd(m *modelir.Model, ti, y modelir.VarHandle, end, duration float64, i, k int) error {
	expr := modelir.Expr{{Coef: 1, Var: ti}, {Coef: -BigM, Var: y}}
	return m.AddLinearConstraint(fmt.Sprintf("tw_ub_%d_%d", i, k), expr, modelir.LE, end-duration-BigM)
}

// addAvailabilityWindows is constraint family 7, same shape as family 6
// against the inspector's own availability window.
func addAvailabilityWindows(m *modelir.Model, idx *VarIndex, inst *datasetintake.RoutingInstance, n, numInspectors int) error {
	for k := 0; k < numInspectors; k++ {
		insp := inst.Inspectors[k]
		for i := 1; i < n; i++ {
			task := inst.Tasks[i-1]
			ti := idx.Arrival[visitKey{i, k}]
			y := idx.Visit[visitKey{i, k}]

			lb := modelir.Expr{{Coef: 1, Var: ti}, {Coef: BigM, Var: y}}
			if err := m.AddLinearConstraint(fmt.Sprintf("avail_lb_%d_%d", i, k), lb, modelir.GE, insp.AvailStart+BigM); err != nil {
				return err
			}
			ub := modelir.Expr{{Coef: 1, Var: ti}, {Coef: -BigM, Var: y}}
			if err := m.AddLinearConstraint(fmt.Sprintf("avail_ub_%d_%d", i, k), ub, modelir.LE, insp.AvailEnd-task.Duration-BigM); err != nil {
				return err
			}
		}
	}
	return nil
}

// totalDurationExpr returns Σ dist[k][i][j]·x[i,j,k] + Σ duration_i·y[i,k]
// for a given inspector k, shared by families 8 and 9.
func totalDurationExpr(inst *datasetintake.RoutingInstance, idx *VarIndex, k, n int) modelir.Expr {
	expr := modelir.Expr{}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := distance(inst, k, i, j)
			if d == 0 {
				continue
			}
			expr = append(expr, modelir.Term{Coef: d, Var: idx.Arc[arcKey{i, j, k}]})
		}
	}
	for i := 1; i < n; i++ {
		expr = append(expr, modelir.Term{Coef: inst.Tasks[i-1].Duration, Var: idx.Visit[visitKey{i, k}]})
	}
	return expr
}

// addDurationWithinAvailability is constraint family 8.
func addDurationWithinAvailability(m *modelir.Model, idx *VarIndex, inst *datasetintake.RoutingInstance, n, numInspectors int) error {
	for k := 0; k < numInspectors; k++ {
		insp := inst.Inspectors[k]
		expr := totalDurationExpr(inst, idx, k, n)
		if err := m.AddLinearConstraint(fmt.Sprintf("total_duration_%d", k), expr, modelir.LE, insp.AvailEnd-insp.AvailStart); err != nil {
			return err
		}
	}
	return nil
}

// addMaxWorkHours is constraint family 9.
func addMaxWorkHours(m *modelir.Model, idx *VarIndex, inst *datasetintake.RoutingInstance, n, numInspectors int) error {
	for k := 0; k < numInspectors; k++ {
		insp := inst.Inspectors[k]
		if insp.MaxWorkHours <= 0 {
			continue
		}
		expr := totalDurationExpr(inst, idx, k, n)
		if err := m.AddLinearConstraint(fmt.Sprintf("max_work_%d", k), expr, modelir.LE, insp.MaxWorkHours); err != nil {
			return err
		}
	}
	return nil
}

// addNoSelfLoops is constraint family 10.
func addNoSelfLoops(m *modelir.Model, idx *VarIndex, n, numInspectors int) error {
	for k := 0; k < numInspectors; k++ {
		for i := 0; i < n; i++ {
			h := idx.Arc[arcKey{i, i, k}]
			if err := m.AddLinearConstraint(fmt.Sprintf("no_loop_%d_%d", i, k), modelir.Expr{{Coef: 1, Var: h}}, modelir.EQ, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// addLoadBalance is constraint family 11.
func addLoadBalance(m *modelir.Model, idx *VarIndex, n, numInspectors int) error {
	for k := 0; k < numInspectors; k++ {
		expr := modelir.Expr{}
		for i := 1; i < n; i++ {
			expr = append(expr, modelir.Term{Coef: 1, Var: idx.Visit[visitKey{i, k}]})
		}
		expr = append(expr, modelir.Term{Coef: -1, Var: idx.MaxTasks})
		if err := m.AddLinearConstraint(fmt.Sprintf("load_balance_%d", k), expr, modelir.LE, 0); err != nil {
			return err
		}
	}
	return nil
}

// addObjective minimizes total travel time plus a small load-balance
// penalty (0.1 * max_tasks), so travel dominates and the load term only
// breaks ties.
func addObjective(m *modelir.Model, idx *VarIndex, inst *datasetintake.RoutingInstance, n, numInspectors int) error {
	expr := modelir.Expr{}
	for k := 0; k < numInspectors; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				d := distance(inst, k, i, j)
				if d == 0 {
					continue
				}
				expr = append(expr, modelir.Term{Coef: d, Var: idx.Arc[arcKey{i, j, k}]})
			}
		}
	}
	expr = append(expr, modelir.Term{Coef: 0.1, Var: idx.MaxTasks})
	return m.SetObjective(expr, modelir.Minimize)
}
