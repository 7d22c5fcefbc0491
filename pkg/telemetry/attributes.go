package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard attribute keys
const (
	// Run
	AttrPlanner = "run.planner"
	AttrRunID   = "run.id"
	AttrStatus  = "run.status"

	// Model
	AttrModelVariables   = "model.variables"
	AttrModelConstraints = "model.constraints"
	AttrObjectiveValue   = "model.objective_value"
	AttrSolveSeconds     = "model.solve_seconds"

	// Input validation
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"
)

// RunAttributes returns a run's attributes.
func RunAttributes(planner, runID, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrPlanner, planner),
		attribute.String(AttrRunID, runID),
		attribute.String(AttrStatus, status),
	}
}

// ModelAttributes returns a built model's attributes.
func ModelAttributes(variables, constraints int, objective, solveSeconds float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrModelVariables, variables),
		attribute.Int(AttrModelConstraints, constraints),
		attribute.Float64(AttrObjectiveValue, objective),
		attribute.Float64(AttrSolveSeconds, solveSeconds),
	}
}

// ValidationAttributes returns a dataset validation's attributes.
func ValidationAttributes(errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}
