// Package modelir implements the backend-neutral intermediate representation
// that every formulation builder targets: variables, linear constraints, a
// single objective, and solver parameters. It has no notion of which planner
// produced it and no notion of which backend will solve it.
package modelir

import (
	"fmt"
	"math"

	"mfsol/pkg/apperror"
)

// VarKind describes the domain of a decision variable.
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

func (k VarKind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Sense is the relational operator of a linear constraint.
type Sense int

const (
	LE Sense = iota
	EQ
	GE
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case EQ:
		return "="
	case GE:
		return ">="
	default:
		return "?"
	}
}

// Direction is the optimization sense of the objective.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// VarHandle is an opaque reference to a variable registered with a Model.
// It is only valid for the Model that produced it.
type VarHandle int

// Var is a decision variable as recorded in the IR.
type Var struct {
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64
}

// Term is a single coefficient-variable pair in a linear expression.
type Term struct {
	Coef float64
	Var  VarHandle
}

// Expr is a sparse linear expression: the sum of its terms.
type Expr []Term

// Constraint is a named linear constraint: Expr Sense RHS.
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// Objective is the model's single linear objective.
type Objective struct {
	Expr      Expr
	Direction Direction
}

// Parameters carries solver tuning knobs set via SetParameter.
type Parameters struct {
	TimeLimitSeconds int
	MIPGap           float64
	Silent           bool
}

// Model is a mutable, backend-neutral MILP instance. It enforces that
// variable and constraint names are unique within a model, and that every
// coefficient and bound is finite.
type Model struct {
	Name string

	vars      []Var
	varIndex  map[string]VarHandle
	cons      []Constraint
	consIndex map[string]bool

	objective Objective
	params    Parameters
}

// NewModel creates an empty model with sane default parameters.
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		varIndex:  make(map[string]VarHandle),
		consIndex: make(map[string]bool),
		params: Parameters{
			TimeLimitSeconds: 60,
			MIPGap:           1e-4,
		},
	}
}

// AddVar registers a new decision variable and returns its handle.
//
// Binary variables always get bounds [0, 1] regardless of the lower/upper
// arguments. Integer and continuous variables default to [0, +Inf) when both
// bounds are passed as zero, matching the "non-negative unless stated
// otherwise" convention the formulation builders rely on; pass math.Inf(-1)
// explicitly for a genuinely free variable.
func (m *Model) AddVar(name string, kind VarKind, lower, upper float64) (VarHandle, error) {
	if name == "" {
		return -1, apperror.New(apperror.CodeInvalidModel, "variable name must not be empty")
	}
	if _, exists := m.varIndex[name]; exists {
		return -1, apperror.NewWithField(apperror.CodeInvalidModel, "duplicate variable name", name)
	}

	switch kind {
	case Binary:
		lower, upper = 0, 1
	case Integer, Continuous:
		if lower == 0 && upper == 0 {
			upper = math.Inf(1)
		}
	}

	if math.IsNaN(lower) || math.IsNaN(upper) {
		return -1, apperror.NewWithField(apperror.CodeInvalidModel, "variable bounds must not be NaN", name)
	}
	if lower > upper {
		return -1, apperror.NewWithField(apperror.CodeInvalidModel, "variable lower bound exceeds upper bound", name)
	}

	h := VarHandle(len(m.vars))
	m.vars = append(m.vars, Var{Name: name, Kind: kind, Lower: lower, Upper: upper})
	m.varIndex[name] = h
	return h, nil
}

// AddLinearConstraint registers a named linear constraint. Every term must
// reference a variable already known to the model, and every coefficient
// must be finite.
func (m *Model) AddLinearConstraint(name string, expr Expr, sense Sense, rhs float64) error {
	if name == "" {
		return apperror.New(apperror.CodeInvalidModel, "constraint name must not be empty")
	}
	if m.consIndex[name] {
		return apperror.NewWithField(apperror.CodeInvalidModel, "duplicate constraint name", name)
	}
	if math.IsNaN(rhs) || math.IsInf(rhs, 0) {
		return apperror.NewWithField(apperror.CodeInvalidModel, "constraint RHS must be finite", name)
	}
	for _, t := range expr {
		if int(t.Var) < 0 || int(t.Var) >= len(m.vars) {
			return apperror.NewWithField(apperror.CodeInvalidModel, "constraint references unknown variable handle", name)
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			return apperror.NewWithField(apperror.CodeInvalidModel, "constraint coefficient must be finite", name)
		}
	}

	m.cons = append(m.cons, Constraint{Name: name, Expr: append(Expr(nil), expr...), Sense: sense, RHS: rhs})
	m.consIndex[name] = true
	return nil
}

// SetObjective replaces the model's objective.
func (m *Model) SetObjective(expr Expr, dir Direction) error {
	for _, t := range expr {
		if int(t.Var) < 0 || int(t.Var) >= len(m.vars) {
			return apperror.New(apperror.CodeInvalidModel, "objective references unknown variable handle")
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			return apperror.New(apperror.CodeInvalidModel, "objective coefficient must be finite")
		}
	}
	m.objective = Objective{Expr: append(Expr(nil), expr...), Direction: dir}
	return nil
}

// SetParameter sets a named solver parameter. Recognized keys are
// "time_limit_seconds" (int), "mip_gap" (float64) and "silent" (bool);
// an unrecognized key is rejected rather than silently ignored.
func (m *Model) SetParameter(key string, value any) error {
	switch key {
	case "time_limit_seconds":
		v, ok := value.(int)
		if !ok || v <= 0 {
			return apperror.NewWithField(apperror.CodeInvalidModel, "time_limit_seconds must be a positive int", key)
		}
		m.params.TimeLimitSeconds = v
	case "mip_gap":
		v, ok := value.(float64)
		if !ok || v < 0 {
			return apperror.NewWithField(apperror.CodeInvalidModel, "mip_gap must be a non-negative float64", key)
		}
		m.params.MIPGap = v
	case "silent":
		v, ok := value.(bool)
		if !ok {
			return apperror.NewWithField(apperror.CodeInvalidModel, "silent must be a bool", key)
		}
		m.params.Silent = v
	default:
		return apperror.NewWithField(apperror.CodeInvalidModel, "unrecognized solver parameter", key)
	}
	return nil
}

// Vars returns the registered variables in handle order.
func (m *Model) Vars() []Var { return m.vars }

// Var returns the variable registered under the given handle.
func (m *Model) Var(h VarHandle) Var { return m.vars[h] }

// VarHandleByName looks up a variable's handle by its registered name.
func (m *Model) VarHandleByName(name string) (VarHandle, bool) {
	h, ok := m.varIndex[name]
	return h, ok
}

// Constraints returns the registered constraints in insertion order.
func (m *Model) Constraints() []Constraint { return m.cons }

// Objective returns the model's current objective.
func (m *Model) Objective() Objective { return m.objective }

// Parameters returns the model's current solver parameters.
func (m *Model) Parameters() Parameters { return m.params }

// NumVars returns the number of registered variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of registered constraints.
func (m *Model) NumConstraints() int { return len(m.cons) }

// CountByKind returns how many registered variables fall into each VarKind,
// used by the Run Coordinator to report model size to metrics.
func (m *Model) CountByKind() (binary, integer, continuous int) {
	for _, v := range m.vars {
		switch v.Kind {
		case Binary:
			binary++
		case Integer:
			integer++
		case Continuous:
			continuous++
		}
	}
	return
}

// String renders a short human-readable summary, used in logs.
func (m *Model) String() string {
	return fmt.Sprintf("Model(%s: %d vars, %d constraints, %s)", m.Name, len(m.vars), len(m.cons), m.objective.Direction)
}
