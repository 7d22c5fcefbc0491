package runcoordinator

import (
	"time"

	"mfsol/internal/datasetintake"
	"mfsol/internal/extractor"
	"mfsol/internal/formulation/balancing"
	"mfsol/internal/formulation/rostering"
	"mfsol/internal/formulation/routing"
	"mfsol/internal/formulation/seasonal"
	"mfsol/internal/modelir"
	"mfsol/internal/runstore"
)

// Problem kind identifiers, also used as runstore.Run.ProblemKind.
const (
	KindRostering = "rostering"
	KindRouting   = "routing"
	KindBalancing = "balancing"
	KindSeasonal  = "seasonal"
)

// Problem adapts one validated Problem Instance to the coordinator's
// build/extract lifecycle. A Problem is built exactly once per run, on the
// worker that owns it; it is never shared across runs.
type Problem interface {
	Kind() string
	Horizon() (start *time.Time, days *int)

	// Build translates the instance into a Model IR. Called once, before
	// the solve call.
	Build() (*modelir.Model, error)

	// Extract reconstructs assignment rows from a terminal-success Result.
	// Called only after Build and only when the solve reached optimal or
	// feasible.
	Extract(res modelir.Result) []runstore.Assignment
}

// RosteringProblem adapts a validated rostering instance.
type RosteringProblem struct {
	Instance *datasetintake.RosteringInstance
	idx      *rostering.VarIndex
}

func NewRosteringProblem(inst *datasetintake.RosteringInstance) *RosteringProblem {
	return &RosteringProblem{Instance: inst}
}

func (p *RosteringProblem) Kind() string { return KindRostering }

func (p *RosteringProblem) Horizon() (*time.Time, *int) {
	days := p.Instance.Params.HorizonDays
	start, err := time.Parse("2006-01-02", p.Instance.Params.HorizonStart)
	if err != nil {
		return nil, &days
	}
	return &start, &days
}

func (p *RosteringProblem) Build() (*modelir.Model, error) {
	m, idx, err := rostering.Build(p.Instance)
	if err != nil {
		return nil, err
	}
	p.idx = idx
	return m, nil
}

func (p *RosteringProblem) Extract(res modelir.Result) []runstore.Assignment {
	sol := extractor.Rostering(p.Instance, p.idx, res)
	out := make([]runstore.Assignment, 0, len(sol.Assignments))
	for _, a := range sol.Assignments {
		out = append(out, runstore.Assignment{
			ActorID: a.ActorID, Period: a.Period, UnitID: a.UnitID,
			Hours: a.Hours, Cost: a.Cost, IsOvertime: a.IsOvertime,
		})
	}
	return out
}

// RoutingProblem adapts a validated inspector-routing instance.
type RoutingProblem struct {
	Instance *datasetintake.RoutingInstance
	idx      *routing.VarIndex
}

func NewRoutingProblem(inst *datasetintake.RoutingInstance) *RoutingProblem {
	return &RoutingProblem{Instance: inst}
}

func (p *RoutingProblem) Kind() string                { return KindRouting }
func (p *RoutingProblem) Horizon() (*time.Time, *int) { return nil, nil }

func (p *RoutingProblem) Build() (*modelir.Model, error) {
	m, idx, err := routing.Build(p.Instance)
	if err != nil {
		return nil, err
	}
	p.idx = idx
	return m, nil
}

func (p *RoutingProblem) Extract(res modelir.Result) []runstore.Assignment {
	sol := extractor.Routing(p.Instance, p.idx, res)
	out := make([]runstore.Assignment, 0, len(sol.Assignments))
	for _, a := range sol.Assignments {
		out = append(out, runstore.Assignment{
			ActorID: a.ActorID, Period: a.Period, UnitID: a.UnitID,
			Hours: a.Hours, Cost: a.Cost, IsOvertime: a.IsOvertime,
		})
	}
	return out
}

// BalancingProblem adapts a validated line-balancing instance.
type BalancingProblem struct {
	Instance *datasetintake.BalancingInstance
	idx      *balancing.VarIndex
}

func NewBalancingProblem(inst *datasetintake.BalancingInstance) *BalancingProblem {
	return &BalancingProblem{Instance: inst}
}

func (p *BalancingProblem) Kind() string                { return KindBalancing }
func (p *BalancingProblem) Horizon() (*time.Time, *int) { return nil, nil }

func (p *BalancingProblem) Build() (*modelir.Model, error) {
	m, idx, err := balancing.Build(p.Instance)
	if err != nil {
		return nil, err
	}
	p.idx = idx
	return m, nil
}

func (p *BalancingProblem) Extract(res modelir.Result) []runstore.Assignment {
	sol := extractor.Balancing(p.Instance, p.idx, res)
	out := make([]runstore.Assignment, 0, len(sol.Assignments))
	for _, a := range sol.Assignments {
		out = append(out, runstore.Assignment{
			ActorID: a.ActorID, Period: a.Period, UnitID: a.UnitID,
			Hours: a.Hours, Cost: a.Cost, IsOvertime: a.IsOvertime,
		})
	}
	return out
}

// SeasonalProblem adapts a validated seasonal production instance.
type SeasonalProblem struct {
	Instance *datasetintake.SeasonalInstance
	idx      *seasonal.VarIndex
}

func NewSeasonalProblem(inst *datasetintake.SeasonalInstance) *SeasonalProblem {
	return &SeasonalProblem{Instance: inst}
}

func (p *SeasonalProblem) Kind() string                { return KindSeasonal }
func (p *SeasonalProblem) Horizon() (*time.Time, *int) { return nil, nil }

func (p *SeasonalProblem) Build() (*modelir.Model, error) {
	m, idx, err := seasonal.Build(p.Instance)
	if err != nil {
		return nil, err
	}
	p.idx = idx
	return m, nil
}

func (p *SeasonalProblem) Extract(res modelir.Result) []runstore.Assignment {
	sol := extractor.Seasonal(p.Instance, p.idx, res)
	out := make([]runstore.Assignment, 0, len(sol.Assignments))
	for _, a := range sol.Assignments {
		out = append(out, runstore.Assignment{
			ActorID: a.ActorID, Period: a.Period, UnitID: a.UnitID,
			Hours: a.Hours, Cost: a.Cost, IsOvertime: a.IsOvertime,
		})
	}
	return out
}
