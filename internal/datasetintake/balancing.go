package datasetintake

import (
	"fmt"

	"mfsol/pkg/apperror"
)

// IntakeBalancing validates a line-balancing dataset and builds the Problem
// Instance the balancing builder consumes, rejecting dangling task
// references and precedence cycles before any model is built.
func IntakeBalancing(tasks []BalancingTask, precedences []Precedence, incompatibilities []Incompatibility, stationSkills map[int][]string, rawParams map[string]any) (*BalancingInstance, error) {
	ve := apperror.NewValidationErrors()

	if len(tasks) == 0 {
		ve.AddError(apperror.CodeEmptyDataset, "balancing dataset has no tasks")
	}

	taskIDs := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			ve.AddErrorWithField(apperror.CodeMissingField, fmt.Sprintf("tasks[%d] has no id", i), "id")
			continue
		}
		if taskIDs[t.ID] {
			ve.AddErrorWithField(apperror.CodeDuplicateID, fmt.Sprintf("duplicate task id: %s", t.ID), "id")
			continue
		}
		taskIDs[t.ID] = true
		if t.Duration <= 0 {
			ve.AddErrorWithField(apperror.CodeOutOfRange, fmt.Sprintf("task %s has non-positive duration", t.ID), "duration")
		}
	}

	adjacency := make(map[string][]string)
	for i, p := range precedences {
		if !taskIDs[p.Before] {
			ve.AddErrorWithField(apperror.CodeDanglingReference, fmt.Sprintf("precedence[%d] references unknown task %q", i, p.Before), "before")
		}
		if !taskIDs[p.After] {
			ve.AddErrorWithField(apperror.CodeDanglingReference, fmt.Sprintf("precedence[%d] references unknown task %q", i, p.After), "after")
		}
		adjacency[p.Before] = append(adjacency[p.Before], p.After)
	}

	if cyclic, chain := hasCycle(taskIDs, adjacency); cyclic {
		ve.AddError(apperror.CodeInvalidInput, fmt.Sprintf("precedence graph contains a cycle: %v", chain))
	}

	for i, inc := range incompatibilities {
		if !taskIDs[inc.A] {
			ve.AddErrorWithField(apperror.CodeDanglingReference, fmt.Sprintf("incompatibility[%d] references unknown task %q", i, inc.A), "a")
		}
		if !taskIDs[inc.B] {
			ve.AddErrorWithField(apperror.CodeDanglingReference, fmt.Sprintf("incompatibility[%d] references unknown task %q", i, inc.B), "b")
		}
	}

	params, err := ParseBalancingParams(rawParams)
	if err != nil {
		ve.Add(err.(*apperror.Error))
	} else if params.MaxStations <= 0 {
		ve.AddErrorWithField(apperror.CodeOutOfRange, "max_stations must be positive", "max_stations")
	}

	if ve.HasErrors() {
		return nil, apperror.New(apperror.CodeInvalidInput, "balancing dataset failed validation").
			WithDetails("errors", ve.ErrorMessages())
	}

	return &BalancingInstance{
		Tasks: tasks, Precedences: precedences, Incompatibilities: incompatibilities,
		StationSkills: stationSkills, Params: params,
	}, nil
}

// hasCycle runs a depth-first search with the standard white/gray/black
// coloring to detect a cycle in the precedence graph.
func hasCycle(nodes map[string]bool, adjacency map[string][]string) (bool, []string) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(nodes))
	for n := range nodes {
		color[n] = white
	}

	var path []string
	var visit func(string) (bool, []string)
	visit = func(n string) (bool, []string) {
		color[n] = gray
		path = append(path, n)
		for _, next := range adjacency[n] {
			switch color[next] {
			case gray:
				return true, append(append([]string(nil), path...), next)
			case white:
				if cyclic, chain := visit(next); cyclic {
					return true, chain
				}
			}
		}
		path = path[:len(path)-1]
		color[n] = black
		return false, nil
	}

	for n := range nodes {
		if color[n] == white {
			if cyclic, chain := visit(n); cyclic {
				return true, chain
			}
		}
	}
	return false, nil
}
