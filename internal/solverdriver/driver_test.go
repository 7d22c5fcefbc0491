package solverdriver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"mfsol/internal/modelir"
	"mfsol/pkg/apperror"
)

type stubBackend struct {
	result  modelir.Result
	solveErr error
	iis     []string
	iisErr  error
	name    string
}

func (s stubBackend) Solve(ctx context.Context, m *modelir.Model) (modelir.Result, error) {
	return s.result, s.solveErr
}

func (s stubBackend) ComputeIIS(ctx context.Context, m *modelir.Model) ([]string, error) {
	return s.iis, s.iisErr
}

func (s stubBackend) Name() string { return s.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDrive_Optimal(t *testing.T) {
	m := modelir.NewModel("t")
	backend := stubBackend{result: modelir.Result{Status: modelir.StatusOptimal}, name: "stub"}

	out, err := Drive(context.Background(), discardLogger(), m, backend)
	if err != nil {
		t.Fatalf("Drive() error = %v", err)
	}
	if out.Result.Status != modelir.StatusOptimal {
		t.Errorf("Status = %v, want Optimal", out.Result.Status)
	}
}

func TestDrive_Infeasible_RequestsIIS(t *testing.T) {
	m := modelir.NewModel("t")
	backend := stubBackend{
		result: modelir.Result{Status: modelir.StatusInfeasible},
		iis:    []string{"c1_coverage_w1", "c1_coverage_w2", "c5_rest_e3"},
		name:   "stub",
	}

	out, err := Drive(context.Background(), discardLogger(), m, backend)
	if apperror.Code(err) != apperror.CodeSolverInfeasible {
		t.Fatalf("expected CodeSolverInfeasible, got %v", err)
	}
	if len(out.Result.IISConstraints) != 3 {
		t.Errorf("IISConstraints = %v, want 3 entries", out.Result.IISConstraints)
	}
}

func TestDrive_Unbounded(t *testing.T) {
	m := modelir.NewModel("t")
	backend := stubBackend{result: modelir.Result{Status: modelir.StatusUnbounded}, name: "stub"}

	_, err := Drive(context.Background(), discardLogger(), m, backend)
	if apperror.Code(err) != apperror.CodeSolverUnbounded {
		t.Errorf("expected CodeSolverUnbounded, got %v", err)
	}
}

func TestDrive_NoSolution(t *testing.T) {
	m := modelir.NewModel("t")
	backend := stubBackend{result: modelir.Result{Status: modelir.StatusNoSolution}, name: "stub"}

	_, err := Drive(context.Background(), discardLogger(), m, backend)
	if apperror.Code(err) != apperror.CodeSolverTimeoutNoIncumbent {
		t.Errorf("expected CodeSolverTimeoutNoIncumbent, got %v", err)
	}
}

func TestDrive_BackendError(t *testing.T) {
	m := modelir.NewModel("t")
	backend := stubBackend{solveErr: errors.New("boom"), name: "stub"}

	_, err := Drive(context.Background(), discardLogger(), m, backend)
	if apperror.Code(err) != apperror.CodeSolverError {
		t.Errorf("expected CodeSolverError, got %v", err)
	}
}

func TestGroupIISByFamily(t *testing.T) {
	names := []string{"c1_coverage_w1", "c1_coverage_w2", "c5_rest_e3", "noprefix"}
	groups := GroupIISByFamily(names)

	if groups["c1"] != 2 {
		t.Errorf("c1 count = %d, want 2", groups["c1"])
	}
	if groups["c5"] != 1 {
		t.Errorf("c5 count = %d, want 1", groups["c5"])
	}
	if groups["noprefix"] != 1 {
		t.Errorf("noprefix count = %d, want 1", groups["noprefix"])
	}
}

func TestGroupIISByFamily_Empty(t *testing.T) {
	if got := GroupIISByFamily(nil); got != nil {
		t.Errorf("GroupIISByFamily(nil) = %v, want nil", got)
	}
}
