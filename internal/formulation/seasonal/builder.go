// Package seasonal builds the Model IR for the twelve-period seasonal
// production planner: stock balance, labor-hours balance, and hire/fire
// workforce continuity across months.
package seasonal

import (
	"fmt"

	"mfsol/internal/datasetintake"
	"mfsol/internal/modelir"
)

const numPeriods = 12

// VarIndex exposes the per-period handles the extractor needs.
type VarIndex struct {
	Prod     [numPeriods]modelir.VarHandle
	Stock    [numPeriods]modelir.VarHandle
	Overtime [numPeriods]modelir.VarHandle
	Workers  [numPeriods]modelir.VarHandle
	Hired    [numPeriods]modelir.VarHandle
	Fired    [numPeriods]modelir.VarHandle
}

// Build translates a validated seasonal instance into a Model IR.
func Build(inst *datasetintake.SeasonalInstance) (*modelir.Model, *VarIndex, error) {
	m := modelir.NewModel("seasonal")
	idx := &VarIndex{}

	for t := 0; t < numPeriods; t++ {
		var err error
		if idx.Prod[t], err = m.AddVar(fmt.Sprintf("prod_%d", t), modelir.Continuous, 0, 0); err != nil {
			return nil, nil, err
		}
		if idx.Stock[t], err = m.AddVar(fmt.Sprintf("stock_%d", t), modelir.Continuous, 0, 0); err != nil {
			return nil, nil, err
		}
		if idx.Overtime[t], err = m.AddVar(fmt.Sprintf("overtime_%d", t), modelir.Continuous, 0, 0); err != nil {
			return nil, nil, err
		}
		if idx.Workers[t], err = m.AddVar(fmt.Sprintf("workers_%d", t), modelir.Integer, 0, 0); err != nil {
			return nil, nil, err
		}
		if idx.Hired[t], err = m.AddVar(fmt.Sprintf("hired_%d", t), modelir.Integer, 0, 0); err != nil {
			return nil, nil, err
		}
		if idx.Fired[t], err = m.AddVar(fmt.Sprintf("fired_%d", t), modelir.Integer, 0, 0); err != nil {
			return nil, nil, err
		}
	}

	demand := inst.MonthlyDemand()

	if err := addStockBalance(m, idx, inst, demand); err != nil {
		return nil, nil, err
	}
	if err := addLaborBalance(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addOvertimeCap(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addWorkforceBalance(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addFinalStock(m, idx, inst); err != nil {
		return nil, nil, err
	}
	if err := addObjective(m, idx, inst); err != nil {
		return nil, nil, err
	}

	m.SetParameter("time_limit_seconds", inst.Params.TimeLimit)
	return m, idx, nil
}

// addStockBalance is constraint family 1: stock[0] = init_stock + prod[0] -
// demand[0]; for t>=1, stock[t] = stock[t-1] + prod[t] - demand[t].
func addStockBalance(m *modelir.Model, idx *VarIndex, inst *datasetintake.SeasonalInstance, demand [numPeriods]float64) error {
	for t := 0; t < numPeriods; t++ {
		expr := modelir.Expr{{Coef: 1, Var: idx.Stock[t]}, {Coef: -1, Var: idx.Prod[t]}}
		rhs := -demand[t]
		if t == 0 {
			rhs += inst.Params.InitialStock
		} else {
			expr = append(expr, modelir.Term{Coef: -1, Var: idx.Stock[t-1]})
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("stock_balance_%d", t), expr, modelir.EQ, rhs); err != nil {
			return err
		}
	}
	return nil
}

// addLaborBalance is constraint family 2: workers[t]*regular_hours +
// overtime[t] = prod[t]*hours_per_unit.
func addLaborBalance(m *modelir.Model, idx *VarIndex, inst *datasetintake.SeasonalInstance) error {
	for t := 0; t < numPeriods; t++ {
		expr := modelir.Expr{
			{Coef: inst.Params.RegularHours, Var: idx.Workers[t]},
			{Coef: 1, Var: idx.Overtime[t]},
			{Coef: -inst.Params.HoursPerUnit, Var: idx.Prod[t]},
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("labor_balance_%d", t), expr, modelir.EQ, 0); err != nil {
			return err
		}
	}
	return nil
}

// addOvertimeCap is constraint family 3: overtime[t] <=
// max_overtime_hours * workers[t].
func addOvertimeCap(m *modelir.Model, idx *VarIndex, inst *datasetintake.SeasonalInstance) error {
	for t := 0; t < numPeriods; t++ {
		expr := modelir.Expr{
			{Coef: 1, Var: idx.Overtime[t]},
			{Coef: -inst.Params.MaxOvertimeHours, Var: idx.Workers[t]},
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("overtime_cap_%d", t), expr, modelir.LE, 0); err != nil {
			return err
		}
	}
	return nil
}

// addWorkforceBalance is constraint family 4: workers[t] = workers[t-1] +
// hired[t] - fired[t], with workers[-1] == initial_workers.
func addWorkforceBalance(m *modelir.Model, idx *VarIndex, inst *datasetintake.SeasonalInstance) error {
	for t := 0; t < numPeriods; t++ {
		expr := modelir.Expr{
			{Coef: 1, Var: idx.Workers[t]},
			{Coef: -1, Var: idx.Hired[t]},
			{Coef: 1, Var: idx.Fired[t]},
		}
		rhs := 0.0
		if t == 0 {
			rhs = float64(inst.Params.InitialWorkers)
		} else {
			expr = append(expr, modelir.Term{Coef: -1, Var: idx.Workers[t-1]})
		}
		if err := m.AddLinearConstraint(fmt.Sprintf("workforce_balance_%d", t), expr, modelir.EQ, rhs); err != nil {
			return err
		}
	}
	return nil
}

// addFinalStock is constraint family 5: stock[11] >= desired_final_stock.
func addFinalStock(m *modelir.Model, idx *VarIndex, inst *datasetintake.SeasonalInstance) error {
	return m.AddLinearConstraint("final_stock", modelir.Expr{{Coef: 1, Var: idx.Stock[numPeriods-1]}}, modelir.GE, inst.Params.DesiredFinalStock)
}

// addObjective minimizes labor + overtime + materials + storage +
// hiring/layoff costs summed over all twelve periods.
func addObjective(m *modelir.Model, idx *VarIndex, inst *datasetintake.SeasonalInstance) error {
	expr := modelir.Expr{}
	for t := 0; t < numPeriods; t++ {
		expr = append(expr,
			modelir.Term{Coef: inst.Params.Salary, Var: idx.Workers[t]},
			modelir.Term{Coef: inst.Params.OvertimeRate, Var: idx.Overtime[t]},
			modelir.Term{Coef: inst.Params.MaterialCost, Var: idx.Prod[t]},
			modelir.Term{Coef: inst.Params.StorageCost, Var: idx.Stock[t]},
			modelir.Term{Coef: inst.Params.HireCost, Var: idx.Hired[t]},
			modelir.Term{Coef: inst.Params.LayoffCost, Var: idx.Fired[t]},
		)
	}
	return m.SetObjective(expr, modelir.Minimize)
}
