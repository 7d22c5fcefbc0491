package gonumbb

import (
	"context"
	"testing"

	"mfsol/internal/modelir"
)

// TestSolve_SimpleKnapsack builds a two-item 0/1 knapsack and checks the
// backend picks the value-maximizing combination that fits the capacity.
func TestSolve_SimpleKnapsack(t *testing.T) {
	m := modelir.NewModel("knapsack")
	x1, _ := m.AddVar("x1", modelir.Binary, 0, 0)
	x2, _ := m.AddVar("x2", modelir.Binary, 0, 0)

	// weights 3 and 4, capacity 5: picking both does not fit.
	if err := m.AddLinearConstraint("capacity", modelir.Expr{{Coef: 3, Var: x1}, {Coef: 4, Var: x2}}, modelir.LE, 5); err != nil {
		t.Fatalf("AddLinearConstraint() error = %v", err)
	}
	// values 5 and 6: picking x2 alone beats x1 alone.
	if err := m.SetObjective(modelir.Expr{{Coef: 5, Var: x1}, {Coef: 6, Var: x2}}, modelir.Maximize); err != nil {
		t.Fatalf("SetObjective() error = %v", err)
	}
	m.SetParameter("time_limit_seconds", 5)

	backend := New()
	result, err := backend.Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != modelir.StatusOptimal {
		t.Fatalf("Status = %v, want Optimal", result.Status)
	}
	if result.ObjectiveValue < 5.999 {
		t.Errorf("ObjectiveValue = %v, want >= 6", result.ObjectiveValue)
	}
	if result.Value(x2) < 0.5 {
		t.Errorf("x2 = %v, want 1 (picking x2 alone is optimal)", result.Value(x2))
	}
}

func TestSolve_Infeasible(t *testing.T) {
	m := modelir.NewModel("infeasible")
	x, _ := m.AddVar("x", modelir.Continuous, 0, 10)
	m.AddLinearConstraint("lower", modelir.Expr{{Coef: 1, Var: x}}, modelir.GE, 20)
	m.SetObjective(modelir.Expr{{Coef: 1, Var: x}}, modelir.Minimize)

	backend := New()
	result, err := backend.Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != modelir.StatusInfeasible {
		t.Errorf("Status = %v, want Infeasible", result.Status)
	}
}

func TestComputeIIS_ReturnsConflictingConstraints(t *testing.T) {
	m := modelir.NewModel("infeasible")
	x, _ := m.AddVar("x", modelir.Continuous, 0, 100)
	m.AddLinearConstraint("upper_bound", modelir.Expr{{Coef: 1, Var: x}}, modelir.LE, 5)
	m.AddLinearConstraint("lower_bound", modelir.Expr{{Coef: 1, Var: x}}, modelir.GE, 20)
	m.SetObjective(modelir.Expr{{Coef: 1, Var: x}}, modelir.Minimize)

	backend := New()
	iis, err := backend.ComputeIIS(context.Background(), m)
	if err != nil {
		t.Fatalf("ComputeIIS() error = %v", err)
	}
	if len(iis) != 2 {
		t.Errorf("IIS = %v, want both conflicting constraints", iis)
	}
}

func TestName(t *testing.T) {
	if New().Name() == "" {
		t.Error("Name() should not be empty")
	}
}
