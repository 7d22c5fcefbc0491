// Package runcoordinator drives a submitted Problem from queued through its
// terminal status: it builds the Model IR, hands it to the Solver Driver,
// extracts the solution on success, and writes every transition through the
// Run Store. It is a thin façade holding the store and exposing one method
// per externally visible operation, with a single top-level solve call
// driving the run's own state machine.
package runcoordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"mfsol/internal/modelir"
	"mfsol/internal/runstore"
	"mfsol/internal/solverdriver"
	"mfsol/pkg/apperror"
	"mfsol/pkg/metrics"
)

// ErrCoordinatorStopped is returned by Submit/SubmitSync after Stop.
var ErrCoordinatorStopped = errors.New("run coordinator is stopped")

// Config sizes the Coordinator's worker pool.
type Config struct {
	// MaxWorkers bounds the number of runs processed concurrently. A
	// value <= 0 defaults to runtime.NumCPU().
	MaxWorkers int
}

// Coordinator implements submit/status/list_recent plus a synchronous
// SubmitSync variant, dispatching each run to its own goroutine from a
// bounded worker pool. One run per worker; no run's Model IR or solver
// session is shared with another.
type Coordinator struct {
	store   runstore.RunStore
	backend modelir.SolverBackend
	logger  *slog.Logger

	sem     chan struct{}
	tracker *metrics.RunTracker

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// New builds a Coordinator backed by store and backend. logger defaults to
// slog.Default() when nil.
func New(store runstore.RunStore, backend modelir.SolverBackend, cfg Config, logger *slog.Logger) *Coordinator {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := metrics.Get()
	return &Coordinator{
		store:   store,
		backend: backend,
		logger:  logger,
		sem:     make(chan struct{}, workers),
		tracker: metrics.NewRunTracker(m.ActiveRuns),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Submit persists problem as a queued run and dispatches it to a worker
// asynchronously, returning the run id immediately.
func (c *Coordinator) Submit(ctx context.Context, problem Problem, rawParams map[string]any) (string, error) {
	runID, err := c.enqueue(ctx, problem, rawParams)
	if err != nil {
		return "", err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.sem <- struct{}{}
		defer func() { <-c.sem }()
		c.process(context.Background(), runID, problem)
	}()

	return runID, nil
}

// SubmitSync persists problem as a queued run and drives it to completion
// on the caller's goroutine, returning the final run and its assignments.
func (c *Coordinator) SubmitSync(ctx context.Context, problem Problem, rawParams map[string]any) (*runstore.Run, []runstore.Assignment, error) {
	runID, err := c.enqueue(ctx, problem, rawParams)
	if err != nil {
		return nil, nil, err
	}

	c.sem <- struct{}{}
	defer func() { <-c.sem }()
	c.process(ctx, runID, problem)

	return c.store.GetByID(ctx, runID)
}

func (c *Coordinator) enqueue(ctx context.Context, problem Problem, rawParams map[string]any) (string, error) {
	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		return "", ErrCoordinatorStopped
	}

	metrics.Get().RecordRunSubmitted(problem.Kind())

	runID := uuid.NewString()
	start, days := problem.Horizon()

	run := &runstore.Run{
		RunID:        runID,
		ProblemKind:  problem.Kind(),
		Status:       runstore.StatusQueued,
		HorizonStart: start,
		HorizonDays:  days,
		SolverParams: rawParams,
		CreatedAt:    time.Now(),
	}
	if err := c.store.Create(ctx, run); err != nil {
		return "", err
	}
	return runID, nil
}

// process builds, solves, and extracts problem, writing every transition
// through the Run Store. It never returns an error: every failure mode is
// recorded as the run's terminal status.
func (c *Coordinator) process(ctx context.Context, runID string, problem Problem) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancels[runID] = cancel
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.cancels, runID)
		c.mu.Unlock()
		cancel()
	}()

	started := time.Now()
	m := metrics.Get()
	c.tracker.Start(problem.Kind())
	defer c.tracker.End(problem.Kind())

	if err := c.store.MarkProcessing(ctx, runID); err != nil {
		c.logger.Error("failed to mark run processing", "run_id", runID, "error", err)
		return
	}

	model, err := problem.Build()
	if err != nil {
		c.finish(ctx, runID, problem.Kind(), started, runstore.StatusError, nil, nil, fmt.Sprintf("model construction failed: %v", err), nil)
		return
	}
	binary, integer, continuous := model.CountByKind()
	m.RecordModelSize(problem.Kind(), binary, continuous+integer, model.NumConstraints())

	outcome, err := solverdriver.Drive(ctx, c.logger, model, c.backend)
	if err != nil {
		status, logs := classify(ctx, err)
		c.finish(ctx, runID, problem.Kind(), started, status, nil, nil, logs, nil)
		return
	}

	status := runstore.StatusOptimal
	if outcome.Result.Status == modelir.StatusFeasibleTimeLimit {
		status = runstore.StatusFeasible
	}

	assignments := problem.Extract(outcome.Result)
	objective := outcome.Result.ObjectiveValue
	gap := outcome.Result.MIPGap
	logs := fmt.Sprintf("solved via %s in %s", outcome.BackendName, outcome.Elapsed)

	c.finish(ctx, runID, problem.Kind(), started, status, &objective, &gap, logs, assignments)
}

func (c *Coordinator) finish(ctx context.Context, runID, planner string, started time.Time, status runstore.Status, objective, gap *float64, logs string, assignments []runstore.Assignment) {
	if err := c.store.CompleteTerminal(context.Background(), runID, status, objective, gap, logs, assignments); err != nil {
		c.logger.Error("failed to persist terminal run status", "run_id", runID, "status", status, "error", err)
	}
	obj := 0.0
	if objective != nil {
		obj = *objective
	}
	metrics.Get().RecordRunCompleted(planner, string(status), time.Since(started), obj)
}

// classify maps a *apperror.Error from solverdriver.Drive, or a cancelled
// context, to the run's terminal status and a log line.
func classify(ctx context.Context, err error) (runstore.Status, string) {
	if ctx.Err() == context.Canceled {
		return runstore.StatusError, "cancelled: run terminated by user request"
	}
	switch apperror.Code(err) {
	case apperror.CodeSolverInfeasible:
		return runstore.StatusInfeasible, err.Error()
	case apperror.CodeSolverTimeoutNoIncumbent:
		return runstore.StatusNoSolution, err.Error()
	default:
		return runstore.StatusError, err.Error()
	}
}

// Status returns a run's current snapshot and its assignments (empty unless
// the run reached a success terminal status).
func (c *Coordinator) Status(ctx context.Context, runID string) (*runstore.Run, []runstore.Assignment, error) {
	return c.store.GetByID(ctx, runID)
}

// ListRecent returns the limit most recently created runs, newest first.
func (c *Coordinator) ListRecent(ctx context.Context, limit int) ([]*runstore.Run, error) {
	runs, _, err := c.store.List(ctx, runstore.ListOptions{Limit: limit})
	return runs, err
}

// Cancel signals the backend's termination hook for an in-flight run. It is
// a no-op, returning false, if the run is not currently processing.
func (c *Coordinator) Cancel(runID string) bool {
	c.mu.Lock()
	cancel, ok := c.cancels[runID]
	c.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// Stop prevents further submissions and waits for in-flight asynchronous
// runs to reach a terminal status.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.wg.Wait()
}
