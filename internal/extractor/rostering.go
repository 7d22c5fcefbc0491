package extractor

import (
	"fmt"
	"time"

	"mfsol/internal/datasetintake"
	"mfsol/internal/formulation/rostering"
	"mfsol/internal/modelir"
)

func parseHorizonDate(iso string) (time.Time, error) {
	return time.Parse("2006-01-02", iso)
}

// RosterEntry is one (employee, day) -> shift assignment.
type RosterEntry struct {
	EmployeeID string
	Day        int
	Date       string // horizon_start + day, when horizon_start parses; otherwise the day index
	ShiftID    string
}

// CostBreakdown is the rostering cost KPI: labor pay, the penalty accrued by
// unmet demand, and the penalty accrued by preference violations.
type CostBreakdown struct {
	LaborCost          float64
	UncoveredPenalty   float64
	PreferencePenalty  float64
	Total              float64
}

// RosteringSolution is the reconstructed roster plus its KPIs.
type RosteringSolution struct {
	Entries     []RosterEntry
	Assignments []Assignment
	Costs       CostBreakdown
}

// Rostering reconstructs a roster and its cost breakdown from a solved
// rostering model.
func Rostering(inst *datasetintake.RosteringInstance, idx *rostering.VarIndex, res modelir.Result) *RosteringSolution {
	sol := &RosteringSolution{}

	shiftByID := make(map[string]datasetintake.Shift, len(inst.Shifts))
	for _, s := range inst.Shifts {
		shiftByID[s.ID] = s
	}
	empByID := make(map[string]datasetintake.Employee, len(inst.Employees))
	for _, e := range inst.Employees {
		empByID[e.ID] = e
	}
	avoid := make(map[string]bool) // employeeID|day|shiftID
	for _, a := range inst.Avoid {
		for _, s := range inst.Shifts {
			if a.Token == s.ID || a.Token == s.Type {
				avoid[fmt.Sprintf("%s|%d|%s", a.EmployeeID, a.Day, s.ID)] = true
			}
		}
	}

	for key, h := range idx.Assign {
		if !approxOne(res.Value(h)) {
			continue
		}
		shift := shiftByID[key.Shift]
		emp := empByID[key.Employee]
		cost := emp.CostPerHour * shift.LengthHours
		sol.Costs.LaborCost += cost
		if avoid[fmt.Sprintf("%s|%d|%s", key.Employee, key.Day, key.Shift)] {
			sol.Costs.PreferencePenalty += inst.Params.WeightPreference
		}
		sol.Entries = append(sol.Entries, RosterEntry{EmployeeID: key.Employee, Day: key.Day, Date: periodLabel(inst.Params.HorizonStart, key.Day), ShiftID: key.Shift})
		sol.Assignments = append(sol.Assignments, Assignment{
			ActorID: key.Employee, Period: periodLabel(inst.Params.HorizonStart, key.Day), UnitID: key.Shift,
			Hours: shift.LengthHours, Cost: cost,
		})
	}

	for _, h := range idx.Slack {
		v := res.Value(h)
		if v > 1e-9 {
			sol.Costs.UncoveredPenalty += v * inst.Params.PenaltyUncovered
		}
	}
	sol.Costs.Total = sol.Costs.LaborCost + sol.Costs.UncoveredPenalty + sol.Costs.PreferencePenalty
	return sol
}

func dateForDay(horizonStart string, day int) (string, bool) {
	t, err := parseHorizonDate(horizonStart)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, day).Format("2006-01-02"), true
}

func periodLabel(horizonStart string, day int) string {
	if d, ok := dateForDay(horizonStart, day); ok {
		return d
	}
	return fmt.Sprintf("%d", day)
}
