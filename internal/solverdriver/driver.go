// Package solverdriver submits a Model IR to a Solver Backend and turns the
// backend's raw Result into the vocabulary the rest of the system speaks:
// a successful Result on optimal/feasible solves, or a classified
// *apperror.Error on every other terminal status. It also requests an IIS
// diagnosis when the backend reports infeasibility, so the caller gets an
// explanation alongside the failure.
package solverdriver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mfsol/internal/modelir"
	"mfsol/pkg/apperror"
)

// Outcome is the driver's interpretation of one solve attempt.
type Outcome struct {
	Result      modelir.Result
	BackendName string
	Elapsed     time.Duration
}

// Drive submits m to backend and classifies the outcome. A non-nil error is
// always an *apperror.Error with one of the solver_* codes; callers that only
// care about terminal-success detection can check err == nil.
func Drive(ctx context.Context, logger *slog.Logger, m *modelir.Model, backend modelir.SolverBackend) (Outcome, error) {
	start := time.Now()
	result, err := backend.Solve(ctx, m)
	elapsed := time.Since(start)

	if err != nil {
		return Outcome{Result: result, BackendName: backend.Name(), Elapsed: elapsed},
			apperror.Wrap(err, apperror.CodeSolverError, "solver backend returned an error").
				WithDetails("backend", backend.Name())
	}

	switch result.Status {
	case modelir.StatusOptimal, modelir.StatusFeasibleTimeLimit:
		return Outcome{Result: result, BackendName: backend.Name(), Elapsed: elapsed}, nil

	case modelir.StatusInfeasible:
		iis, iisErr := backend.ComputeIIS(ctx, m)
		if iisErr != nil {
			logger.Warn("IIS computation failed", "model", m.Name, "error", iisErr)
		} else {
			result.IISConstraints = iis
		}
		families := GroupIISByFamily(result.IISConstraints)
		logger.Info("solve reported infeasible", "model", m.Name, "iis_constraints", len(result.IISConstraints), "families", families)
		return Outcome{Result: result, BackendName: backend.Name(), Elapsed: elapsed},
			apperror.New(apperror.CodeSolverInfeasible, "no feasible solution exists for the submitted model").
				WithDetails("iis_constraints", result.IISConstraints).
				WithDetails("iis_families", families)

	case modelir.StatusUnbounded:
		return Outcome{Result: result, BackendName: backend.Name(), Elapsed: elapsed},
			apperror.New(apperror.CodeSolverUnbounded, "objective is unbounded on the feasible region")

	case modelir.StatusNoSolution:
		return Outcome{Result: result, BackendName: backend.Name(), Elapsed: elapsed},
			apperror.New(apperror.CodeSolverTimeoutNoIncumbent, "time limit elapsed before any incumbent was found")

	default:
		return Outcome{Result: result, BackendName: backend.Name(), Elapsed: elapsed},
			apperror.New(apperror.CodeSolverError, "solver backend returned an unrecognized terminal status")
	}
}

// GroupIISByFamily buckets IIS constraint names by their family prefix
// (the token before the first underscore, e.g. "c1_coverage_w3_s2" groups
// under "c1"), so a caller can report which constraint family is driving
// infeasibility without dumping the full, often large, IIS list.
func GroupIISByFamily(names []string) map[string]int {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]int)
	for _, n := range names {
		family := n
		if i := strings.IndexByte(n, '_'); i > 0 {
			family = n[:i]
		}
		out[family]++
	}
	return out
}
