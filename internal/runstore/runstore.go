// Package runstore is the durable store for runs and their assignments:
// two tables, queryable by identifier and by recency, backed by a
// Postgres repository with a clamped List pagination window.
package runstore

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned by GetByID, MarkProcessing and
// CompleteTerminal when no row matches the given run id.
var ErrRunNotFound = errors.New("run not found")

// ErrRunExists is returned by Create when a run id is resubmitted.
// Idempotency is by run identifier; a resubmission with the same
// identifier is rejected rather than silently overwritten.
var ErrRunExists = errors.New("run id already exists")

// Status is the run lifecycle state: queued, processing, or one of the
// terminal outcomes a solve attempt can end in.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusNoSolution Status = "no_solution"
	StatusInfeasible Status = "infeasible"
	StatusError      Status = "error"
)

// IsTerminal reports whether the status is one the state machine does not
// advance out of.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusOptimal, StatusFeasible, StatusNoSolution, StatusInfeasible, StatusError:
		return true
	default:
		return false
	}
}

// Run is the durable record of a submitted solve attempt.
type Run struct {
	RunID          string
	ProblemKind    string
	Status         Status
	HorizonStart   *time.Time
	HorizonDays    *int
	ObjectiveValue *float64
	MIPGap         *float64
	SolverParams   map[string]any
	Logs           string
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// Assignment is the durable record of one actor-period-unit placement
// produced by a run: one row per (run, actor, period).
type Assignment struct {
	ID         int64
	RunID      string
	ActorID    string
	Period     string
	UnitID     string
	Hours      float64
	Cost       float64
	IsOvertime bool
}

// ListFilter narrows a List call. A zero value matches every run.
type ListFilter struct {
	ProblemKind string
	Status      Status
}

// ListOptions paginates a List call. Limit is clamped to [1,100], default
// 20.
type ListOptions struct {
	Limit  int
	Offset int
	Filter ListFilter
}

// RunStore persists runs and their assignments. Implementations must make
// the terminal status, objective value, and assignment rows of a run
// visible atomically.
type RunStore interface {
	// Create inserts a new run in StatusQueued. Returns ErrRunExists if the
	// id is already present.
	Create(ctx context.Context, run *Run) error

	// MarkProcessing transitions a queued run to StatusProcessing.
	MarkProcessing(ctx context.Context, runID string) error

	// CompleteTerminal writes a run's terminal status, objective value,
	// MIP gap, and logs, and inserts its assignments, as a single atomic
	// transaction. assignments is empty on a non-success terminal status.
	CompleteTerminal(ctx context.Context, runID string, status Status, objectiveValue, mipGap *float64, logs string, assignments []Assignment) error

	// GetByID returns a run and its assignments (assignments empty unless
	// the run reached a success terminal status).
	GetByID(ctx context.Context, runID string) (*Run, []Assignment, error)

	// List returns recent runs newest-first, paginated per opts, plus the
	// total row count matching the filter.
	List(ctx context.Context, opts ListOptions) ([]*Run, int64, error)
}
