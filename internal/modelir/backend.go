package modelir

import (
	"context"
	"time"
)

// TerminalStatus is one of the statuses a Solver Backend may report for a
// solve attempt.
type TerminalStatus int

const (
	// StatusOptimal means the backend proved the returned solution optimal.
	StatusOptimal TerminalStatus = iota
	// StatusFeasibleTimeLimit means an incumbent was found but the time
	// limit elapsed before optimality could be proven.
	StatusFeasibleTimeLimit
	// StatusNoSolution means the time limit elapsed before any incumbent
	// was found, and feasibility is otherwise undetermined.
	StatusNoSolution
	// StatusInfeasible means the backend proved no feasible solution exists.
	StatusInfeasible
	// StatusUnbounded means the backend proved the objective is unbounded.
	StatusUnbounded
	// StatusError means the backend failed for a reason unrelated to the
	// model itself (numerical failure, internal panic recovered, etc).
	StatusError
)

func (s TerminalStatus) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasibleTimeLimit:
		return "feasible"
	case StatusNoSolution:
		return "no_solution"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// IsTerminalSuccess reports whether the status carries a usable primal
// solution (optimal or feasible-at-time-limit).
func (s TerminalStatus) IsTerminalSuccess() bool {
	return s == StatusOptimal || s == StatusFeasibleTimeLimit
}

// Result is what a Solver Backend returns for one solve attempt.
type Result struct {
	Status         TerminalStatus
	Primal         map[VarHandle]float64
	ObjectiveValue float64
	MIPGap         float64
	WallTime       time.Duration
	NodesExplored  int

	// IISConstraints holds the names of an irreducible inconsistent
	// subsystem, populated only when Status is StatusInfeasible and the
	// backend was asked to diagnose it.
	IISConstraints []string
}

// Value returns the primal value assigned to a variable, or 0 if the
// variable is absent from the result (e.g. the solve never reached a
// feasible point).
func (r Result) Value(h VarHandle) float64 {
	return r.Primal[h]
}

// SolverBackend is implemented by any concrete MILP solver. It lives in this
// package, rather than in the driver package, so both the driver and the
// concrete backends can depend on it without an import cycle.
type SolverBackend interface {
	// Solve runs the backend against the given model, honoring ctx
	// cancellation and the model's Parameters().TimeLimitSeconds.
	Solve(ctx context.Context, m *Model) (Result, error)

	// ComputeIIS attempts to identify a minimal set of constraints that,
	// together, make m infeasible. Only called after Solve reports
	// StatusInfeasible. Implementations that cannot compute an IIS may
	// return a nil slice and a nil error.
	ComputeIIS(ctx context.Context, m *Model) ([]string, error)

	// Name identifies the backend for logs and metrics.
	Name() string
}
