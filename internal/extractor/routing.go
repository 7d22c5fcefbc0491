package extractor

import (
	"math"

	"mfsol/internal/datasetintake"
	"mfsol/internal/formulation/routing"
	"mfsol/internal/modelir"
)

// RouteStop is one visited node in an inspector's route.
type RouteStop struct {
	TaskID  string
	Arrival float64
}

// Route is one inspector's reconstructed sequence of stops.
type Route struct {
	InspectorID  string
	Stops        []RouteStop
	TravelHours  float64
	ServiceHours float64
	GapHours     float64
}

// RoutingSolution is the reconstructed set of routes plus its KPIs.
type RoutingSolution struct {
	Routes       []Route
	Assignments  []Assignment
	TotalTravel  float64
	TotalService float64
	TotalGap     float64
}

func routingDistance(inst *datasetintake.RoutingInstance, k, i, j int) float64 {
	if i == j {
		return 0
	}
	a := routing.NodeLocation(inst, k, i)
	b := routing.NodeLocation(inst, k, j)
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx+dy*dy) / inst.Params.SpeedKmh
}

// arcSet is a plain-key mirror of VarIndex.Arc's active arcs for one
// inspector, built by iteration since the map's key type is unexported.
type arcSet map[[2]int]bool

// Routing reconstructs, per inspector, the ordered task sequence by
// following the unique outgoing arc with x ≈ 1 from node 0 back to node 0.
func Routing(inst *datasetintake.RoutingInstance, idx *routing.VarIndex, res modelir.Result) *RoutingSolution {
	sol := &RoutingSolution{}
	n := 1 + len(inst.Tasks)
	numInspectors := len(inst.Inspectors)

	active := make([]arcSet, numInspectors)
	for k := range active {
		active[k] = make(arcSet)
	}
	for key, h := range idx.Arc {
		if !approxOne(res.Value(h)) {
			continue
		}
		active[key.K][[2]int{key.I, key.J}] = true
	}

	arrival := make([]map[int]float64, numInspectors)
	for k := range arrival {
		arrival[k] = make(map[int]float64)
	}
	for key, h := range idx.Arrival {
		arrival[key.K][key.I] = res.Value(h)
	}

	for k := 0; k < numInspectors; k++ {
		insp := inst.Inspectors[k]
		route := Route{InspectorID: insp.ID}

		node := 0
		for steps := 0; steps <= n; steps++ {
			next := -1
			for j := 0; j < n; j++ {
				if active[k][[2]int{node, j}] {
					next = j
					break
				}
			}
			if next == -1 || next == 0 {
				if next == 0 && node != 0 {
					route.TravelHours += routingDistance(inst, k, node, 0)
				}
				break
			}
			route.TravelHours += routingDistance(inst, k, node, next)
			task := inst.Tasks[next-1]
			route.Stops = append(route.Stops, RouteStop{TaskID: task.ID, Arrival: arrival[k][next]})
			route.ServiceHours += task.Duration
			sol.Assignments = append(sol.Assignments, Assignment{
				ActorID: insp.ID, Period: task.ID, UnitID: task.ID, Hours: task.Duration,
			})
			node = next
		}

		if len(route.Stops) > 0 {
			window := insp.AvailEnd - insp.AvailStart
			route.GapHours = window - route.TravelHours - route.ServiceHours
			if route.GapHours < 0 {
				route.GapHours = 0
			}
		}

		sol.Routes = append(sol.Routes, route)
		sol.TotalTravel += route.TravelHours
		sol.TotalService += route.ServiceHours
		sol.TotalGap += route.GapHours
	}

	return sol
}
