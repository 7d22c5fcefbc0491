package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mfsol/pkg/database"
	"mfsol/pkg/telemetry"
)

// postgres unique_violation error code.
const pgUniqueViolation = "23505"

// PostgresRunStore is the Postgres-backed RunStore.
type PostgresRunStore struct {
	db database.DB
}

// NewPostgresRunStore returns a RunStore backed by db. The caller is
// expected to have applied the migrations in the top-level migrations
// package before use.
func NewPostgresRunStore(db database.DB) *PostgresRunStore {
	return &PostgresRunStore{db: db}
}

func (s *PostgresRunStore) Create(ctx context.Context, run *Run) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunStore.Create")
	defer span.End()

	params, err := json.Marshal(run.SolverParams)
	if err != nil {
		return fmt.Errorf("failed to marshal solver params: %w", err)
	}

	query := `
		INSERT INTO runs (run_id, problem_kind, status, horizon_start, horizon_days, solver_params, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.Exec(ctx, query, run.RunID, run.ProblemKind, string(run.Status), run.HorizonStart, run.HorizonDays, params, run.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRunExists
		}
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (s *PostgresRunStore) MarkProcessing(ctx context.Context, runID string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunStore.MarkProcessing")
	defer span.End()

	result, err := s.db.Exec(ctx, `UPDATE runs SET status = $1 WHERE run_id = $2 AND status = $3`,
		string(StatusProcessing), runID, string(StatusQueued))
	if err != nil {
		return fmt.Errorf("failed to mark run processing: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// CompleteTerminal writes the terminal status, objective, gap, and logs and
// inserts the assignment rows inside one transaction, so a reader never
// observes the status update without its assignments or vice versa.
func (s *PostgresRunStore) CompleteTerminal(ctx context.Context, runID string, status Status, objectiveValue, mipGap *float64, logs string, assignments []Assignment) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunStore.CompleteTerminal")
	defer span.End()

	return database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		completedAt := time.Now()
		tag, err := tx.Exec(ctx,
			`UPDATE runs SET status = $1, objective_value = $2, mip_gap = $3, logs = $4, completed_at = $5 WHERE run_id = $6`,
			string(status), objectiveValue, mipGap, logs, completedAt, runID)
		if err != nil {
			return fmt.Errorf("failed to update run terminal status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRunNotFound
		}

		for _, a := range assignments {
			_, err := tx.Exec(ctx,
				`INSERT INTO assignments (run_id, actor_id, period, unit_id, hours, cost, is_overtime) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				runID, a.ActorID, a.Period, a.UnitID, a.Hours, a.Cost, a.IsOvertime)
			if err != nil {
				return fmt.Errorf("failed to insert assignment: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresRunStore) GetByID(ctx context.Context, runID string) (*Run, []Assignment, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunStore.GetByID")
	defer span.End()

	run := &Run{RunID: runID}
	var status string
	var params []byte

	err := s.db.QueryRow(ctx, `
		SELECT problem_kind, status, horizon_start, horizon_days, objective_value, mip_gap, solver_params, logs, created_at, completed_at
		FROM runs WHERE run_id = $1
	`, runID).Scan(
		&run.ProblemKind, &status, &run.HorizonStart, &run.HorizonDays,
		&run.ObjectiveValue, &run.MIPGap, &params, &run.Logs, &run.CreatedAt, &run.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrRunNotFound
		}
		return nil, nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.Status = Status(status)
	if len(params) > 0 {
		if err := json.Unmarshal(params, &run.SolverParams); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal solver params: %w", err)
		}
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, actor_id, period, unit_id, hours, cost, is_overtime FROM assignments WHERE run_id = $1 ORDER BY id
	`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		a := Assignment{RunID: runID}
		if err := rows.Scan(&a.ID, &a.ActorID, &a.Period, &a.UnitID, &a.Hours, &a.Cost, &a.IsOvertime); err != nil {
			return nil, nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return run, assignments, nil
}

func (s *PostgresRunStore) List(ctx context.Context, opts ListOptions) ([]*Run, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunStore.List")
	defer span.End()

	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}

	where, args := buildWhereClause(opts.Filter)

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM runs WHERE %s`, where)
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT run_id, problem_kind, status, horizon_start, horizon_days, objective_value, created_at, completed_at
		FROM runs WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var status string
		if err := rows.Scan(&run.RunID, &run.ProblemKind, &status, &run.HorizonStart, &run.HorizonDays, &run.ObjectiveValue, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Status = Status(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return runs, total, nil
}

func buildWhereClause(filter ListFilter) (string, []any) {
	conditions := []string{"1 = 1"}
	var args []any
	argNum := 1

	if filter.ProblemKind != "" {
		conditions = append(conditions, fmt.Sprintf("problem_kind = $%d", argNum))
		args = append(args, filter.ProblemKind)
		argNum++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, string(filter.Status))
		argNum++
	}

	return strings.Join(conditions, " AND "), args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
