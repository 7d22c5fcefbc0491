package extractor

import (
	"sort"
	"strconv"

	"mfsol/internal/datasetintake"
	"mfsol/internal/formulation/balancing"
	"mfsol/internal/modelir"
)

// StationPlan is one used station's assigned tasks and utilization.
type StationPlan struct {
	Station     int
	TaskIDs     []string
	TotalTime   float64
	Idle        float64
	Efficiency  float64 // TotalTime / CycleTime
}

// BalancingSolution is the reconstructed station plan plus its KPIs.
type BalancingSolution struct {
	Stations          []StationPlan
	Assignments       []Assignment
	CycleTime         float64
	OverallEfficiency float64
}

// Balancing reconstructs, per used station, its assigned task list and
// utilization.
func Balancing(inst *datasetintake.BalancingInstance, idx *balancing.VarIndex, res modelir.Result) *BalancingSolution {
	sol := &BalancingSolution{CycleTime: res.Value(idx.Cycle)}

	taskStation := make(map[string]int, len(inst.Tasks))
	for key, h := range idx.Assign {
		if approxOne(res.Value(h)) {
			taskStation[key.Task] = key.Station
		}
	}

	byStation := make(map[int][]datasetintake.BalancingTask)
	for _, t := range inst.Tasks {
		st, ok := taskStation[t.ID]
		if !ok {
			continue
		}
		byStation[st] = append(byStation[st], t)
	}

	var stationNums []int
	for st := range byStation {
		stationNums = append(stationNums, st)
	}
	sort.Ints(stationNums)

	var totalTaskTime float64
	for _, st := range stationNums {
		tasks := byStation[st]
		plan := StationPlan{Station: st}
		for _, t := range tasks {
			plan.TaskIDs = append(plan.TaskIDs, t.ID)
			plan.TotalTime += t.Duration
			sol.Assignments = append(sol.Assignments, Assignment{
				ActorID: t.ID, Period: strconv.Itoa(st), UnitID: t.ID, Hours: t.Duration,
			})
		}
		plan.Idle = sol.CycleTime - plan.TotalTime
		if sol.CycleTime > 0 {
			plan.Efficiency = plan.TotalTime / sol.CycleTime
		}
		totalTaskTime += plan.TotalTime
		sol.Stations = append(sol.Stations, plan)
	}

	if n := len(sol.Stations); n > 0 && sol.CycleTime > 0 {
		sol.OverallEfficiency = totalTaskTime / (float64(n) * sol.CycleTime)
	}

	return sol
}
