package seasonal

import (
	"testing"

	"mfsol/internal/datasetintake"
)

func flatDemandInstance(t *testing.T) *datasetintake.SeasonalInstance {
	t.Helper()
	inst, err := datasetintake.IntakeSeasonal([4]float64{100, 100, 100, 100}, map[string]any{
		"initial_workers": 5, "hours_per_unit": 2.0, "regular_hours": 160.0,
		"max_overtime_hours": 20.0, "salary": 2000.0, "overtime_rate": 15.0,
	})
	if err != nil {
		t.Fatalf("IntakeSeasonal() error = %v", err)
	}
	return inst
}

func TestBuild_DeclaresTwelvePeriodsOfEachVariable(t *testing.T) {
	inst := flatDemandInstance(t)

	m, idx, err := Build(inst)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if m.NumVars() != numPeriods*6 {
		t.Errorf("expected %d variables, got %d", numPeriods*6, m.NumVars())
	}
	if idx.Prod[0] == idx.Stock[0] {
		t.Error("expected distinct handles for prod[0] and stock[0]")
	}
}

func TestBuild_StockBalanceAnchorsOnInitialStock(t *testing.T) {
	inst := flatDemandInstance(t)

	m, _, err := Build(inst)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	found := false
	for _, c := range m.Constraints() {
		if c.Name == "stock_balance_0" {
			found = true
			if c.RHS != -100+inst.Params.InitialStock {
				t.Errorf("stock_balance_0 RHS = %v, want %v", c.RHS, -100+inst.Params.InitialStock)
			}
		}
	}
	if !found {
		t.Fatal("expected a stock_balance_0 constraint")
	}
}

func TestBuild_WorkforceBalanceAnchorsOnInitialWorkers(t *testing.T) {
	inst := flatDemandInstance(t)

	m, _, err := Build(inst)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, c := range m.Constraints() {
		if c.Name == "workforce_balance_0" && c.RHS != float64(inst.Params.InitialWorkers) {
			t.Errorf("workforce_balance_0 RHS = %v, want %v", c.RHS, inst.Params.InitialWorkers)
		}
	}
}

func TestBuild_FinalStockIsALowerBound(t *testing.T) {
	inst := flatDemandInstance(t)

	m, idx, err := Build(inst)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, c := range m.Constraints() {
		if c.Name == "final_stock" {
			if c.Sense != 2 { // GE
				t.Errorf("final_stock sense = %v, want GE", c.Sense)
			}
			if len(c.Expr) != 1 || c.Expr[0].Var != idx.Stock[numPeriods-1] {
				t.Errorf("final_stock should reference stock[%d] alone", numPeriods-1)
			}
		}
	}
}

func TestBuild_ObjectiveMinimizesAllSixCostTerms(t *testing.T) {
	inst := flatDemandInstance(t)

	m, idx, err := Build(inst)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	obj := m.Objective()
	if len(obj.Expr) != numPeriods*6 {
		t.Errorf("objective has %d terms, want %d", len(obj.Expr), numPeriods*6)
	}
	if obj.Direction != 0 { // Minimize
		t.Errorf("objective direction = %v, want Minimize", obj.Direction)
	}
	_ = idx
}
