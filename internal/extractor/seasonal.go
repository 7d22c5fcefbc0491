package extractor

import (
	"strconv"

	"mfsol/internal/datasetintake"
	"mfsol/internal/formulation/seasonal"
	"mfsol/internal/modelir"
)

const numSeasonalPeriods = 12

// MonthPlan is one period's production plan.
type MonthPlan struct {
	Month    int
	Prod     float64
	Workers  int
	Overtime float64
	Stock    float64
	Cost     float64
}

// SeasonalSolution is the reconstructed twelve-month plan plus its KPIs.
type SeasonalSolution struct {
	Months      []MonthPlan
	Assignments []Assignment
	AnnualCost  float64
}

// Seasonal reconstructs the twelve-month production plan and its monthly
// and annual cost.
func Seasonal(inst *datasetintake.SeasonalInstance, idx *seasonal.VarIndex, res modelir.Result) *SeasonalSolution {
	sol := &SeasonalSolution{}

	for t := 0; t < numSeasonalPeriods; t++ {
		prod := res.Value(idx.Prod[t])
		workers := int(res.Value(idx.Workers[t]) + 0.5)
		overtime := res.Value(idx.Overtime[t])
		stock := res.Value(idx.Stock[t])

		cost := float64(workers)*inst.Params.Salary +
			overtime*inst.Params.OvertimeRate +
			prod*inst.Params.MaterialCost +
			stock*inst.Params.StorageCost +
			res.Value(idx.Hired[t])*inst.Params.HireCost +
			res.Value(idx.Fired[t])*inst.Params.LayoffCost

		sol.Months = append(sol.Months, MonthPlan{
			Month: t, Prod: prod, Workers: workers, Overtime: overtime, Stock: stock, Cost: cost,
		})
		sol.Assignments = append(sol.Assignments, Assignment{
			ActorID: "plant", Period: strconv.Itoa(t), UnitID: "production",
			Hours: prod, Cost: cost, IsOvertime: overtime > 1e-9,
		})
		sol.AnnualCost += cost
	}

	return sol
}
