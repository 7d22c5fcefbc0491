// Package rostering builds the Model IR for the hospital nurse rostering
// planner: shift assignment variables, elastic coverage slack, and the nine
// constraint families of the hospital scheduling domain.
package rostering

import (
	"fmt"

	"mfsol/internal/datasetintake"
	"mfsol/internal/modelir"
)

// VarIndex records the handles the extractor needs to read back a solution,
// since the IR itself only knows opaque VarHandles.
type VarIndex struct {
	Assign map[assignKey]modelir.VarHandle // x[e,t,s]
	Slack  map[slackKey]modelir.VarHandle  // y[t,s,u]
}

type assignKey struct {
	Employee string
	Day      int
	Shift    string
}

type slackKey struct {
	Day   int
	Shift string
	Skill string
}

// Build translates a validated rostering instance into a Model IR.
func Build(inst *datasetintake.RosteringInstance) (*modelir.Model, *VarIndex, error) {
	m := modelir.NewModel("rostering")
	idx := &VarIndex{Assign: make(map[assignKey]modelir.VarHandle), Slack: make(map[slackKey]modelir.VarHandle)}

	horizonDays := inst.Params.HorizonDays
	shiftByID := make(map[string]datasetintake.Shift, len(inst.Shifts))
	for _, s := range inst.Shifts {
		shiftByID[s.ID] = s
	}

	// Decision variables x[e,t,s], omitted when the employee is marked
	// unavailable on day t so hard unavailability prunes the variable
	// instead of entering the model as a disabled assignment.
	for _, e := range inst.Employees {
		for t := 0; t < horizonDays; t++ {
			if e.Availability != nil {
				if avail, known := e.Availability[t]; known && !avail {
					continue
				}
			}
			for _, s := range inst.Shifts {
				name := fmt.Sprintf("x_%s_%d_%s", e.ID, t, s.ID)
				h, err := m.AddVar(name, modelir.Binary, 0, 0)
				if err != nil {
					return nil, nil, err
				}
				idx.Assign[assignKey{e.ID, t, s.ID}] = h
			}
		}
	}

	// Coverage slack y[t,s,u], always declared.
	skillsWithDemand := make(map[string]bool)
	for _, d := range inst.Demand {
		skillsWithDemand[d.Skill] = true
	}
	for t := 0; t < horizonDays; t++ {
		for _, s := range inst.Shifts {
			for skill := range skillsWithDemand {
				name := fmt.Sprintf("y_%d_%s_%s", t, s.ID, skill)
				h, err := m.AddVar(name, modelir.Continuous, 0, 0)
				if err != nil {
					return nil, nil, err
				}
				idx.Slack[slackKey{t, s.ID, skill}] = h
				if !inst.Params.AllowUncoveredDemand {
					if err := m.AddLinearConstraint(fmt.Sprintf("slack_zero_%d_%s_%s", t, s.ID, skill),
						modelir.Expr{{Coef: 1, Var: h}}, modelir.LE, 0); err != nil {
						return nil, nil, err
					}
				}
			}
		}
	}

	if err := addCoverage(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addOneShiftPerDay(m, idx, inst, horizonDays); err != nil {
		return nil, nil, err
	}
	if err := addCapacity(m, idx, inst, horizonDays); err != nil {
		return nil, nil, err
	}
	if err := addMinRestAndRotation(m, idx, inst, horizonDays, shiftByID); err != nil {
		return nil, nil, err
	}
	if err := addMaxConsecutiveDays(m, idx, inst, horizonDays); err != nil {
		return nil, nil, err
	}
	if err := addMaxNightShifts(m, idx, inst, horizonDays); err != nil {
		return nil, nil, err
	}
	if err := addMinShifts(m, idx, inst, horizonDays); err != nil {
		return nil, nil, err
	}
	if err := addCompleteWeekends(m, idx, inst, horizonDays); err != nil {
		return nil, nil, err
	}
	if err := addICURatio(m, idx, inst, horizonDays); err != nil {
		return nil, nil, err
	}

	if err := addObjective(m, idx, inst, horizonDays); err != nil {
		return nil, nil, err
	}

	m.SetParameter("time_limit_seconds", inst.Params.SolverTimeLimit)
	return m, idx, nil
}

// addCoverage is constraint family 1: elastic coverage per (t, s, u) with
// required > 0.
func addCoverage(m *modelir.Model, idx *VarIndex, inst *datasetintake.RosteringInstance) error {
	for _, d := range inst.Demand {
		if d.Required <= 0 {
			continue
		}
		expr := modelir.Expr{}
		for _, e := range inst.Employees {
			if !e.HasSkill(d.Skill) {
				continue
			}
			if h, ok := idx.Assign[assignKey{e.ID, d.Day, d.ShiftID}]; ok {
				expr = append(expr, modelir.Term{Coef: 1, Var: h})
			}
		}
		if h, ok := idx.Slack[slackKey{d.Day, d.ShiftID, d.Skill}]; ok {
			expr = append(expr, modelir.Term{Coef: 1, Var: h})
		}
		name := fmt.Sprintf("cov_%d_%s_%s", d.Day, d.ShiftID, d.Skill)
		if err := m.AddLinearConstraint(name, expr, modelir.GE, float64(d.Required)); err != nil {
			return err
		}
	}
	return nil
}

// addOneShiftPerDay is constraint family 2.
func addOneShiftPerDay(m *modelir.Model, idx *VarIndex, inst *datasetintake.RosteringInstance, horizonDays int) error {
	for _, e := range inst.Employees {
		for t := 0; t < horizonDays; t++ {
			expr := modelir.Expr{}
			for _, s := range inst.Shifts {
				if h, ok := idx.Assign[assignKey{e.ID, t, s.ID}]; ok {
					expr = append(expr, modelir.Term{Coef: 1, Var: h})
				}
			}
			if len(expr) == 0 {
				continue
			}
			name := fmt.Sprintf("one_shift_%s_%d", e.ID, t)
			if err := m.AddLinearConstraint(name, expr, modelir.LE, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// addCapacity is constraint family 3.
func addCapacity(m *modelir.Model, idx *VarIndex, inst *datasetintake.RosteringInstance, horizonDays int) error {
	for _, e := range inst.Employees {
		expr := modelir.Expr{}
		for t := 0; t < horizonDays; t++ {
			for _, s := range inst.Shifts {
				if h, ok := idx.Assign[assignKey{e.ID, t, s.ID}]; ok {
					expr = append(expr, modelir.Term{Coef: s.LengthHours, Var: h})
				}
			}
		}
		if len(expr) == 0 {
			continue
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("capacity_%s", e.ID), expr, modelir.LE, e.MaxHours); err != nil {
			return err
		}
	}
	return nil
}

// gapHours computes the clock-gap between the end of s1 and the start of s2
// on the following day, treating a night shift ending before noon as having
// crossed midnight.
func gapHours(s1, s2 datasetintake.Shift) float64 {
	end := float64(s1.EndHour)
	if s1.Type == "night" && s1.EndHour < 12 {
		end += 24
	}
	start := float64(s2.StartHour) + 24 // s2 is on the following day
	return start - end
}

// addMinRestAndRotation is constraint family 4.
func addMinRestAndRotation(m *modelir.Model, idx *VarIndex, inst *datasetintake.RosteringInstance, horizonDays int, shiftByID map[string]datasetintake.Shift) error {
	var forbidden [][2]string
	for _, s1 := range inst.Shifts {
		for _, s2 := range inst.Shifts {
			if gapHours(s1, s2) < inst.Params.MinRestHours {
				forbidden = append(forbidden, [2]string{s1.ID, s2.ID})
				continue
			}
			if s1.Type == "night" && s2.Type == "day" {
				forbidden = append(forbidden, [2]string{s1.ID, s2.ID}) // forward rotation
			}
		}
	}

	for _, e := range inst.Employees {
		for t := 0; t < horizonDays-1; t++ {
			for _, pair := range forbidden {
				h1, ok1 := idx.Assign[assignKey{e.ID, t, pair[0]}]
				h2, ok2 := idx.Assign[assignKey{e.ID, t + 1, pair[1]}]
				if !ok1 || !ok2 {
					continue
				}
				name := fmt.Sprintf("rest_%s_%d_%s_%s", e.ID, t, pair[0], pair[1])
				if err := m.AddLinearConstraint(name, modelir.Expr{{Coef: 1, Var: h1}, {Coef: 1, Var: h2}}, modelir.LE, 1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// addMaxConsecutiveDays is constraint family 5.
func addMaxConsecutiveDays(m *modelir.Model, idx *VarIndex, inst *datasetintake.RosteringInstance, horizonDays int) error {
	window := inst.Params.MaxConsecutiveDays + 1
	if window > horizonDays {
		return nil
	}
	for _, e := range inst.Employees {
		for start := 0; start+window <= horizonDays; start++ {
			expr := modelir.Expr{}
			for t := start; t < start+window; t++ {
				for _, s := range inst.Shifts {
					if h, ok := idx.Assign[assignKey{e.ID, t, s.ID}]; ok {
						expr = append(expr, modelir.Term{Coef: 1, Var: h})
					}
				}
			}
			if len(expr) == 0 {
				continue
			}
			name := fmt.Sprintf("consecutive_%s_%d", e.ID, start)
			if err := m.AddLinearConstraint(name, expr, modelir.LE, float64(inst.Params.MaxConsecutiveDays)); err != nil {
				return err
			}
		}
	}
	return nil
}

// addMaxNightShifts is constraint family 6.
func addMaxNightShifts(m *modelir.Model, idx *VarIndex, inst *datasetintake.RosteringInstance, horizonDays int) error {
	if inst.Params.MaxNightShifts <= 0 {
		return nil
	}
	for _, e := range inst.Employees {
		expr := modelir.Expr{}
		for t := 0; t < horizonDays; t++ {
			for _, s := range inst.Shifts {
				if s.Type != "night" {
					continue
				}
				if h, ok := idx.Assign[assignKey{e.ID, t, s.ID}]; ok {
					expr = append(expr, modelir.Term{Coef: 1, Var: h})
				}
			}
		}
		if len(expr) == 0 {
			continue
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("max_nights_%s", e.ID), expr, modelir.LE, float64(inst.Params.MaxNightShifts)); err != nil {
			return err
		}
	}
	return nil
}

// addMinShifts is constraint family 7.
func addMinShifts(m *modelir.Model, idx *VarIndex, inst *datasetintake.RosteringInstance, horizonDays int) error {
	if inst.Params.MinShiftsPerEmployee <= 0 {
		return nil
	}
	for _, e := range inst.Employees {
		expr := modelir.Expr{}
		for t := 0; t < horizonDays; t++ {
			for _, s := range inst.Shifts {
				if h, ok := idx.Assign[assignKey{e.ID, t, s.ID}]; ok {
					expr = append(expr, modelir.Term{Coef: 1, Var: h})
				}
			}
		}
		if len(expr) == 0 {
			continue
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("min_shifts_%s", e.ID), expr, modelir.GE, float64(inst.Params.MinShiftsPerEmployee)); err != nil {
			return err
		}
	}
	return nil
}

// addCompleteWeekends is constraint family 8. Day indices are relative to
// horizon_start; Saturday/Sunday pairs are detected by weekday arithmetic
// against Params.HorizonStart when present, otherwise this family is a
// no-op (no calendar to anchor against).
func addCompleteWeekends(m *modelir.Model, idx *VarIndex, inst *datasetintake.RosteringInstance, horizonDays int) error {
	if !inst.Params.RequireCompleteWeekends {
		return nil
	}
	startWeekday, ok := parseISOWeekday(inst.Params.HorizonStart)
	if !ok {
		return nil
	}
	for _, e := range inst.Employees {
		for t := 0; t < horizonDays-1; t++ {
			weekday := (startWeekday + t) % 7
			if weekday != 6 { // 6 == Saturday, 0 == Sunday in this 0-indexed scheme
				continue
			}
			satExpr, sunExpr := modelir.Expr{}, modelir.Expr{}
			for _, s := range inst.Shifts {
				if h, ok := idx.Assign[assignKey{e.ID, t, s.ID}]; ok {
					satExpr = append(satExpr, modelir.Term{Coef: 1, Var: h})
				}
				if h, ok := idx.Assign[assignKey{e.ID, t + 1, s.ID}]; ok {
					sunExpr = append(sunExpr, modelir.Term{Coef: 1, Var: h})
				}
			}
			if len(satExpr) == 0 && len(sunExpr) == 0 {
				continue
			}
			combined := append(satExpr, negate(sunExpr)...)
			name := fmt.Sprintf("weekend_%s_%d", e.ID, t)
			if err := m.AddLinearConstraint(name, combined, modelir.EQ, 0); err != nil {
				return err
			}
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

// parseISOWeekday returns the 0=Sunday..6=Saturday weekday of an ISO-8601
// date string, or false if it cannot be parsed. Kept deliberately minimal:
// only the weekday is needed, not a full calendar.
func parseISOWeekday(iso string) (int, bool) {
	if len(iso) != 10 {
		return 0, false
	}
	t, err := parseDate(iso)
	if err != nil {
		return 0, false
	}
	return int(t.Weekday()), true
}

// addICURatio is constraint family 9.
func addICURatio(m *modelir.Model, idx *VarIndex, inst *datasetintake.RosteringInstance, horizonDays int) error {
	for t := 0; t < horizonDays; t++ {
		for _, s := range inst.Shifts {
			if !s.IsICU {
				continue
			}
			expr := modelir.Expr{}
			has := false
			for _, e := range inst.Employees {
				h, ok := idx.Assign[assignKey{e.ID, t, s.ID}]
				if !ok {
					continue
				}
				has = true
				if e.IsSenior {
					expr = append(expr, modelir.Term{Coef: 1, Var: h})
				} else {
					expr = append(expr, modelir.Term{Coef: -1, Var: h})
				}
			}
			if !has {
				continue
			}
			name := fmt.Sprintf("icu_ratio_%d_%s", t, s.ID)
			if err := m.AddLinearConstraint(name, expr, modelir.GE, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// addObjective builds the weighted sum of cost, uncovered-demand penalty,
// and avoid-preference penalty.
func addObjective(m *modelir.Model, idx *VarIndex, inst *datasetintake.RosteringInstance, horizonDays int) error {
	avoid := make(map[assignKey]bool)
	shiftByID := make(map[string]datasetintake.Shift, len(inst.Shifts))
	for _, s := range inst.Shifts {
		shiftByID[s.ID] = s
	}
	for _, a := range inst.Avoid {
		for _, s := range inst.Shifts {
			if a.Token == s.ID || a.Token == s.Type {
				avoid[assignKey{a.EmployeeID, a.Day, s.ID}] = true
			}
		}
	}

	expr := modelir.Expr{}
	for key, h := range idx.Assign {
		shift := shiftByID[key.Shift]
		var emp datasetintake.Employee
		for _, e := range inst.Employees {
			if e.ID == key.Employee {
				emp = e
				break
			}
		}
		coef := emp.CostPerHour * shift.LengthHours
		if avoid[key] {
			coef += inst.Params.WeightPreference
		}
		expr = append(expr, modelir.Term{Coef: coef, Var: h})
	}
	for _, h := range idx.Slack {
		expr = append(expr, modelir.Term{Coef: inst.Params.PenaltyUncovered, Var: h})
	}

	return m.SetObjective(expr, modelir.Minimize)
}
