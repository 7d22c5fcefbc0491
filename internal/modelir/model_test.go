package modelir

import (
	"math"
	"testing"

	"mfsol/pkg/apperror"
)

func TestAddVar_BinaryForcesBounds(t *testing.T) {
	m := NewModel("t")
	h, err := m.AddVar("x", Binary, -5, 5)
	if err != nil {
		t.Fatalf("AddVar() error = %v", err)
	}
	v := m.Var(h)
	if v.Lower != 0 || v.Upper != 1 {
		t.Errorf("binary bounds = [%v,%v], want [0,1]", v.Lower, v.Upper)
	}
}

func TestAddVar_ContinuousDefaultsToNonNegative(t *testing.T) {
	m := NewModel("t")
	h, err := m.AddVar("y", Continuous, 0, 0)
	if err != nil {
		t.Fatalf("AddVar() error = %v", err)
	}
	v := m.Var(h)
	if v.Lower != 0 || !math.IsInf(v.Upper, 1) {
		t.Errorf("continuous default bounds = [%v,%v], want [0,+Inf)", v.Lower, v.Upper)
	}
}

func TestAddVar_DuplicateNameRejected(t *testing.T) {
	m := NewModel("t")
	if _, err := m.AddVar("x", Continuous, 0, 1); err != nil {
		t.Fatalf("first AddVar() error = %v", err)
	}
	_, err := m.AddVar("x", Continuous, 0, 1)
	if apperror.Code(err) != apperror.CodeInvalidModel {
		t.Errorf("expected CodeInvalidModel, got %v", err)
	}
}

func TestAddVar_InvertedBoundsRejected(t *testing.T) {
	m := NewModel("t")
	_, err := m.AddVar("x", Continuous, 10, 1)
	if err == nil {
		t.Fatal("expected error for inverted bounds")
	}
}

func TestAddLinearConstraint_UnknownVariableRejected(t *testing.T) {
	m := NewModel("t")
	err := m.AddLinearConstraint("c1", Expr{{Coef: 1, Var: 99}}, LE, 1)
	if apperror.Code(err) != apperror.CodeInvalidModel {
		t.Errorf("expected CodeInvalidModel, got %v", err)
	}
}

func TestAddLinearConstraint_NonFiniteCoefficientRejected(t *testing.T) {
	m := NewModel("t")
	h, _ := m.AddVar("x", Continuous, 0, 1)
	err := m.AddLinearConstraint("c1", Expr{{Coef: math.NaN(), Var: h}}, LE, 1)
	if err == nil {
		t.Fatal("expected error for NaN coefficient")
	}
}

func TestAddLinearConstraint_DuplicateNameRejected(t *testing.T) {
	m := NewModel("t")
	h, _ := m.AddVar("x", Continuous, 0, 1)
	if err := m.AddLinearConstraint("c1", Expr{{Coef: 1, Var: h}}, LE, 1); err != nil {
		t.Fatalf("first constraint error = %v", err)
	}
	err := m.AddLinearConstraint("c1", Expr{{Coef: 1, Var: h}}, LE, 1)
	if apperror.Code(err) != apperror.CodeInvalidModel {
		t.Errorf("expected CodeInvalidModel for duplicate constraint name, got %v", err)
	}
}

func TestSetObjective_UnknownVariableRejected(t *testing.T) {
	m := NewModel("t")
	err := m.SetObjective(Expr{{Coef: 1, Var: 5}}, Minimize)
	if err == nil {
		t.Fatal("expected error for unknown variable handle in objective")
	}
}

func TestSetParameter_TimeLimitSeconds(t *testing.T) {
	m := NewModel("t")
	if err := m.SetParameter("time_limit_seconds", 30); err != nil {
		t.Fatalf("SetParameter() error = %v", err)
	}
	if m.Parameters().TimeLimitSeconds != 30 {
		t.Errorf("TimeLimitSeconds = %d, want 30", m.Parameters().TimeLimitSeconds)
	}
}

func TestSetParameter_UnrecognizedKeyRejected(t *testing.T) {
	m := NewModel("t")
	err := m.SetParameter("bogus_key", 1)
	if apperror.Code(err) != apperror.CodeInvalidModel {
		t.Errorf("expected CodeInvalidModel, got %v", err)
	}
}

func TestSetParameter_WrongTypeRejected(t *testing.T) {
	m := NewModel("t")
	err := m.SetParameter("mip_gap", "not-a-float")
	if err == nil {
		t.Fatal("expected error for wrong parameter type")
	}
}

func TestCountByKind(t *testing.T) {
	m := NewModel("t")
	m.AddVar("b1", Binary, 0, 0)
	m.AddVar("b2", Binary, 0, 0)
	m.AddVar("i1", Integer, 0, 10)
	m.AddVar("c1", Continuous, 0, 0)

	binary, integer, continuous := m.CountByKind()
	if binary != 2 || integer != 1 || continuous != 1 {
		t.Errorf("CountByKind() = (%d,%d,%d), want (2,1,1)", binary, integer, continuous)
	}
}
