// Package gonumbb is a reference Solver Backend: a branch-and-bound MILP
// solver built on gonum's dense simplex implementation. It consumes a
// modelir.Model directly and reports the six-way terminal status the rest
// of the system expects.
//
// Every decision variable must have a finite lower bound; the backend
// rejects models containing a genuinely free variable rather than silently
// mis-solving them (no formulation builder in this system produces one).
package gonumbb

import (
	"context"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"mfsol/internal/modelir"
	"mfsol/pkg/apperror"
)

const (
	defaultMaxNodes = 50000
	integerTol      = 1e-6
)

// Backend is a branch-and-bound MILP solver.
type Backend struct {
	// MaxNodes caps the size of the enumeration tree explored per solve.
	// Zero means defaultMaxNodes.
	MaxNodes int
}

// New returns a Backend with default settings.
func New() *Backend { return &Backend{MaxNodes: defaultMaxNodes} }

// Name identifies the backend in logs and metrics.
func (b *Backend) Name() string { return "gonum-branch-and-bound" }

type varBound struct{ lo, hi float64 }

// standardForm is a model translated into gonum lp.Simplex's vocabulary:
// minimize c^T x s.t. A x = b, x >= 0.
type standardForm struct {
	c        []float64
	A        *mat.Dense
	b        []float64
	nVars    int // number of original-variable columns (0..nVars-1)
	isInt    []bool
	constRHS float64 // objective constant introduced by the lower-bound shift
	maximize bool
}

// build translates m into standard form, applying bound overrides (used by
// the branch-and-bound search to tighten a variable's feasible range at a
// given node without mutating m itself).
func build(m *modelir.Model, overrides map[modelir.VarHandle]varBound) (*standardForm, error) {
	vars := m.Vars()
	n := len(vars)

	lower := make([]float64, n)
	upper := make([]float64, n)
	isInt := make([]bool, n)
	for i, v := range vars {
		lower[i], upper[i] = v.Lower, v.Upper
		if ov, ok := overrides[modelir.VarHandle(i)]; ok {
			lower[i], upper[i] = ov.lo, ov.hi
		}
		if math.IsInf(lower[i], -1) {
			return nil, apperror.New(apperror.CodeSolverError, "gonum-branch-and-bound requires every variable to have a finite lower bound").
				WithDetails("variable", v.Name)
		}
		isInt[i] = v.Kind == modelir.Integer || v.Kind == modelir.Binary
	}

	type row struct {
		coef map[int]float64
		rhs  float64
		isLE bool // false means equality
	}
	var rows []row

	for _, con := range m.Constraints() {
		coef := make(map[int]float64, len(con.Expr))
		rhs := con.RHS
		for _, t := range con.Expr {
			idx := int(t.Var)
			coef[idx] += t.Coef
			rhs -= t.Coef * lower[idx]
		}
		switch con.Sense {
		case modelir.EQ:
			rows = append(rows, row{coef: coef, rhs: rhs, isLE: false})
		case modelir.LE:
			rows = append(rows, row{coef: coef, rhs: rhs, isLE: true})
		case modelir.GE:
			flipped := make(map[int]float64, len(coef))
			for k, v := range coef {
				flipped[k] = -v
			}
			rows = append(rows, row{coef: flipped, rhs: -rhs, isLE: true})
		}
	}

	for i := range vars {
		if !math.IsInf(upper[i], 1) {
			ub := upper[i] - lower[i]
			rows = append(rows, row{coef: map[int]float64{i: 1}, rhs: ub, isLE: true})
		}
	}

	nLE := 0
	for _, r := range rows {
		if r.isLE {
			nLE++
		}
	}
	nCols := n + nLE
	A := mat.NewDense(len(rows), nCols, nil)
	b := make([]float64, len(rows))

	slackCol := n
	for ri, r := range rows {
		rhs := r.rhs
		for idx, coef := range r.coef {
			A.Set(ri, idx, coef)
		}
		var thisSlack int
		if r.isLE {
			thisSlack = slackCol
			A.Set(ri, thisSlack, 1)
			slackCol++
		}
		if rhs < 0 {
			for idx := range r.coef {
				A.Set(ri, idx, -A.At(ri, idx))
			}
			if r.isLE {
				A.Set(ri, thisSlack, -A.At(ri, thisSlack))
			}
			rhs = -rhs
		}
		b[ri] = rhs
	}

	c := make([]float64, nCols)
	constRHS := 0.0
	maximize := m.Objective().Direction == modelir.Maximize
	for _, t := range m.Objective().Expr {
		idx := int(t.Var)
		coef := t.Coef
		if maximize {
			coef = -coef
		}
		c[idx] += coef
		constRHS += t.Coef * lower[idx]
	}

	fullIsInt := make([]bool, nCols)
	copy(fullIsInt, isInt)

	return &standardForm{c: c, A: A, b: b, nVars: n, isInt: fullIsInt, constRHS: constRHS, maximize: maximize}, nil
}

func (sf *standardForm) solveRelaxation() (obj float64, x []float64, err error) {
	obj, x, err = lp.Simplex(sf.c, sf.A, sf.b, 0, nil)
	return obj, x, err
}

type node struct {
	overrides map[modelir.VarHandle]varBound
}

// Solve runs branch-and-bound to completion, to the node cap, to the model's
// time limit, or until ctx is done, whichever happens first.
func (b *Backend) Solve(ctx context.Context, m *modelir.Model) (modelir.Result, error) {
	start := time.Now()
	limit := time.Duration(m.Parameters().TimeLimitSeconds) * time.Second
	maxNodes := b.MaxNodes
	if maxNodes <= 0 {
		maxNodes = defaultMaxNodes
	}

	root, err := build(m, nil)
	if err != nil {
		return modelir.Result{Status: modelir.StatusError}, err
	}

	if _, _, rootErr := root.solveRelaxation(); rootErr != nil {
		if rootErr == lp.ErrInfeasible {
			return modelir.Result{Status: modelir.StatusInfeasible}, nil
		}
		if rootErr == lp.ErrUnbounded {
			return modelir.Result{Status: modelir.StatusUnbounded}, nil
		}
		return modelir.Result{Status: modelir.StatusError}, apperror.Wrap(rootErr, apperror.CodeSolverError, "root LP relaxation failed")
	}

	var (
		incumbentX   []float64
		incumbentObj float64
		haveIncumbent bool
		nodesSeen    int
		exhausted    = true
	)

	stack := []node{{overrides: map[modelir.VarHandle]varBound{}}}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			exhausted = false
			break
		}
		if limit > 0 && time.Since(start) > limit {
			exhausted = false
			break
		}
		if nodesSeen >= maxNodes {
			exhausted = false
			break
		}
		nodesSeen++

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sf, buildErr := build(m, cur.overrides)
		if buildErr != nil {
			return modelir.Result{Status: modelir.StatusError}, buildErr
		}
		obj, x, solveErr := sf.solveRelaxation()
		if solveErr != nil {
			continue // infeasible or degenerate subproblem: prune this branch
		}

		if haveIncumbent && obj >= incumbentObj-1e-9 {
			continue // bound pruning: this branch cannot beat the incumbent
		}

		fracVar, fracVal, isIntegral := mostFractional(sf, x, m)
		if isIntegral {
			incumbentX = append([]float64(nil), x...)
			incumbentObj = obj
			haveIncumbent = true
			continue
		}

		lo, hi := currentBounds(m, cur.overrides, fracVar)
		floorVal := math.Floor(fracVal)
		ceilVal := math.Ceil(fracVal)

		if floorVal >= lo {
			left := cloneOverrides(cur.overrides)
			left[fracVar] = varBound{lo: lo, hi: floorVal}
			stack = append(stack, node{overrides: left})
		}
		if ceilVal <= hi {
			right := cloneOverrides(cur.overrides)
			right[fracVar] = varBound{lo: ceilVal, hi: hi}
			stack = append(stack, node{overrides: right})
		}
	}

	status := modelir.StatusOptimal
	if !exhausted {
		if !haveIncumbent {
			return modelir.Result{Status: modelir.StatusNoSolution, WallTime: time.Since(start), NodesExplored: nodesSeen}, nil
		}
		status = modelir.StatusFeasibleTimeLimit
	} else if !haveIncumbent {
		return modelir.Result{Status: modelir.StatusInfeasible}, nil
	}

	primal := make(map[modelir.VarHandle]float64, root.nVars)
	vars := m.Vars()
	for i := 0; i < root.nVars; i++ {
		val := incumbentX[i] + vars[i].Lower
		primal[modelir.VarHandle(i)] = val
	}

	finalObj := incumbentObj + root.constRHS
	if root.maximize {
		finalObj = -finalObj
	}

	return modelir.Result{
		Status:         status,
		Primal:         primal,
		ObjectiveValue: finalObj,
		WallTime:       time.Since(start),
		NodesExplored:  nodesSeen,
	}, nil
}

func currentBounds(m *modelir.Model, overrides map[modelir.VarHandle]varBound, h modelir.VarHandle) (lo, hi float64) {
	if ov, ok := overrides[h]; ok {
		return ov.lo, ov.hi
	}
	v := m.Var(h)
	return v.Lower, v.Upper
}

func cloneOverrides(o map[modelir.VarHandle]varBound) map[modelir.VarHandle]varBound {
	out := make(map[modelir.VarHandle]varBound, len(o)+1)
	for k, v := range o {
		out[k] = v
	}
	return out
}

// mostFractional returns the integer/binary variable whose relaxed value is
// furthest from an integer, and that value. isIntegral is true if every
// integer/binary variable is already within integerTol of a whole number.
func mostFractional(sf *standardForm, x []float64, m *modelir.Model) (h modelir.VarHandle, val float64, isIntegral bool) {
	bestDist := -1.0
	bestIdx := -1
	for i := 0; i < sf.nVars; i++ {
		if !sf.isInt[i] {
			continue
		}
		shifted := x[i] + m.Var(modelir.VarHandle(i)).Lower
		frac := shifted - math.Floor(shifted)
		dist := math.Min(frac, 1-frac)
		if dist > integerTol && dist > bestDist {
			bestDist = dist
			bestIdx = i
			val = shifted
		}
	}
	if bestIdx < 0 {
		return 0, 0, true
	}
	return modelir.VarHandle(bestIdx), val, false
}

// ComputeIIS performs a deletion-filter search over the model's constraints:
// it repeatedly drops a constraint and re-checks feasibility of the LP
// relaxation, keeping drops that preserve infeasibility, until no further
// constraint can be removed without making the remaining set feasible. The
// result is an irreducible (w.r.t. single-constraint removal) infeasible
// subsystem of the LP relaxation, which is also infeasible for the MILP.
func (b *Backend) ComputeIIS(ctx context.Context, m *modelir.Model) ([]string, error) {
	all := m.Constraints()
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.Name
	}

	kept := append([]string(nil), names...)
	for i := 0; i < len(kept); {
		if ctx.Err() != nil {
			break
		}
		trial := append(append([]string(nil), kept[:i]...), kept[i+1:]...)
		feasible, err := relaxationFeasible(m, trial)
		if err != nil {
			return nil, err
		}
		if feasible {
			i++ // this constraint is necessary for infeasibility, keep it
		} else {
			kept = trial // redundant, drop it and re-examine from the same index
		}
	}

	sort.Strings(kept)
	return kept, nil
}

func relaxationFeasible(m *modelir.Model, keepNames []string) (bool, error) {
	keep := make(map[string]bool, len(keepNames))
	for _, n := range keepNames {
		keep[n] = true
	}

	sub := modelir.NewModel(m.Name + "-iis-probe")
	handleMap := make(map[modelir.VarHandle]modelir.VarHandle)
	for i, v := range m.Vars() {
		nh, err := sub.AddVar(v.Name, modelir.Continuous, v.Lower, v.Upper)
		if err != nil {
			return false, apperror.Wrap(err, apperror.CodeSolverError, "failed to build IIS probe model")
		}
		handleMap[modelir.VarHandle(i)] = nh
	}
	for _, con := range m.Constraints() {
		if !keep[con.Name] {
			continue
		}
		expr := make(modelir.Expr, len(con.Expr))
		for i, t := range con.Expr {
			expr[i] = modelir.Term{Coef: t.Coef, Var: handleMap[t.Var]}
		}
		if err := sub.AddLinearConstraint(con.Name, expr, con.Sense, con.RHS); err != nil {
			return false, apperror.Wrap(err, apperror.CodeSolverError, "failed to build IIS probe model")
		}
	}

	sf, err := build(sub, nil)
	if err != nil {
		return false, err
	}
	_, _, solveErr := sf.solveRelaxation()
	if solveErr == lp.ErrInfeasible {
		return false, nil
	}
	if solveErr != nil {
		return false, nil
	}
	return true, nil
}
