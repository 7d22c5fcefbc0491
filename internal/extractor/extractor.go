// Package extractor reads primal values off a solved Model IR and
// reconstructs the domain artifact each planner promises its caller: a
// roster, a set of routes, a station plan, or a production plan, plus the
// KPIs defined for that domain.
package extractor

// Assignment is the domain-agnostic row the Run Store persists for a run's
// terminal success transition: one row per (actor, period, unit).
type Assignment struct {
	ActorID    string
	Period     string
	UnitID     string
	Hours      float64
	Cost       float64
	IsOvertime bool
}

func approxOne(v float64) bool {
	return v > 0.5
}
