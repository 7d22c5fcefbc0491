package datasetintake

import (
	"fmt"

	"mfsol/pkg/apperror"
)

// RawInspector is the wire shape of an Inspector record.
type RawInspector struct {
	ID           string
	Location     Location
	Skills       []string
	AvailStart   float64
	AvailEnd     float64
	MaxWorkHours float64
}

// RawTask is the wire shape of a routing Task record.
type RawTask struct {
	ID            string
	Location      Location
	Duration      float64
	RequiredSkill string
	WindowStart   float64
	WindowEnd     float64
}

// IntakeRouting validates an inspector-routing dataset and builds the
// Problem Instance the routing builder consumes.
func IntakeRouting(depot Location, inspectors []RawInspector, tasks []RawTask, rawParams map[string]any) (*RoutingInstance, error) {
	ve := apperror.NewValidationErrors()

	if len(tasks) == 0 {
		ve.AddError(apperror.CodeEmptyDataset, "routing dataset has no tasks")
	}
	if len(inspectors) == 0 {
		ve.AddError(apperror.CodeEmptyDataset, "routing dataset has no inspectors")
	}

	inspectorIDs := make(map[string]bool, len(inspectors))
	parsedInspectors := make([]Inspector, 0, len(inspectors))
	for i, raw := range inspectors {
		if raw.ID == "" {
			ve.AddErrorWithField(apperror.CodeMissingField, fmt.Sprintf("inspectors[%d] has no id", i), "id")
			continue
		}
		if inspectorIDs[raw.ID] {
			ve.AddErrorWithField(apperror.CodeDuplicateID, fmt.Sprintf("duplicate inspector id: %s", raw.ID), "id")
			continue
		}
		inspectorIDs[raw.ID] = true
		if raw.AvailStart > raw.AvailEnd {
			ve.AddErrorWithField(apperror.CodeInconsistentWindow, fmt.Sprintf("inspector %s has avail_start after avail_end", raw.ID), "avail_start")
		}
		if raw.MaxWorkHours < 0 {
			ve.AddErrorWithField(apperror.CodeNegativeQuantity, fmt.Sprintf("inspector %s has negative max_work_hours", raw.ID), "max_work_hours")
		}
		parsedInspectors = append(parsedInspectors, Inspector{
			ID: raw.ID, Location: raw.Location, Skills: raw.Skills,
			AvailStart: raw.AvailStart, AvailEnd: raw.AvailEnd, MaxWorkHours: raw.MaxWorkHours,
		})
	}

	taskIDs := make(map[string]bool, len(tasks))
	parsedTasks := make([]Task, 0, len(tasks))
	for i, raw := range tasks {
		if raw.ID == "" {
			ve.AddErrorWithField(apperror.CodeMissingField, fmt.Sprintf("tasks[%d] has no id", i), "id")
			continue
		}
		if taskIDs[raw.ID] {
			ve.AddErrorWithField(apperror.CodeDuplicateID, fmt.Sprintf("duplicate task id: %s", raw.ID), "id")
			continue
		}
		taskIDs[raw.ID] = true
		if raw.Duration <= 0 {
			ve.AddErrorWithField(apperror.CodeOutOfRange, fmt.Sprintf("task %s has non-positive duration", raw.ID), "duration")
		}
		if raw.WindowStart > raw.WindowEnd {
			ve.AddErrorWithField(apperror.CodeInconsistentWindow, fmt.Sprintf("task %s has window_start after window_end", raw.ID), "window_start")
		} else if raw.Duration > raw.WindowEnd-raw.WindowStart {
			ve.AddErrorWithField(apperror.CodeInconsistentWindow, fmt.Sprintf("task %s duration exceeds its time window", raw.ID), "duration")
		}
		parsedTasks = append(parsedTasks, Task{
			ID: raw.ID, Location: raw.Location, Duration: raw.Duration,
			RequiredSkill: raw.RequiredSkill, WindowStart: raw.WindowStart, WindowEnd: raw.WindowEnd,
		})
	}

	params, err := ParseRoutingParams(rawParams)
	if err != nil {
		ve.Add(err.(*apperror.Error))
	} else if params.SpeedKmh <= 0 {
		ve.AddErrorWithField(apperror.CodeOutOfRange, "speed_kmh must be positive", "speed_kmh")
	}

	if ve.HasErrors() {
		return nil, apperror.New(apperror.CodeInvalidInput, "routing dataset failed validation").
			WithDetails("errors", ve.ErrorMessages())
	}

	return &RoutingInstance{
		Depot:      depot,
		Inspectors: parsedInspectors,
		Tasks:      parsedTasks,
		Params:     params,
	}, nil
}
