package datasetintake

import (
	"fmt"
	"strings"

	"mfsol/pkg/apperror"
)

// RawEmployee is the wire shape of an Employee record: skills arrive
// pipe-delimited ("RN|ICU") and are split during intake.
type RawEmployee struct {
	ID           string
	Role         string
	SkillsRaw    string
	CostPerHour  float64
	MaxHours     float64
	Availability map[int]bool
	IsSenior     bool
}

// RawShift is the wire shape of a Shift record.
type RawShift struct {
	ID          string
	StartHour   int
	EndHour     int
	LengthHours float64
	Type        string
	IsICU       bool
}

func splitSkills(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IntakeRostering validates a hospital rostering dataset and builds the
// Problem Instance a builder consumes. Every check runs regardless of
// earlier failures; the caller receives the full set of problems at once.
func IntakeRostering(employees []RawEmployee, shifts []RawShift, demand []DemandRow, avoid []AvoidPreference, rawParams map[string]any) (*RosteringInstance, error) {
	ve := apperror.NewValidationErrors()

	if len(employees) == 0 && len(shifts) == 0 {
		ve.AddError(apperror.CodeEmptyDataset, "rostering dataset has no employees and no shifts")
	}

	empIDs := make(map[string]bool, len(employees))
	parsedEmployees := make([]Employee, 0, len(employees))
	for i, raw := range employees {
		if raw.ID == "" {
			ve.AddErrorWithField(apperror.CodeMissingField, fmt.Sprintf("employees[%d] has no id", i), "id")
			continue
		}
		if empIDs[raw.ID] {
			ve.AddErrorWithField(apperror.CodeDuplicateID, fmt.Sprintf("duplicate employee id: %s", raw.ID), "id")
			continue
		}
		empIDs[raw.ID] = true
		if raw.CostPerHour < 0 {
			ve.AddErrorWithField(apperror.CodeNegativeQuantity, fmt.Sprintf("employee %s has negative cost_per_hour", raw.ID), "cost_per_hour")
		}
		if raw.MaxHours <= 0 {
			ve.AddErrorWithField(apperror.CodeOutOfRange, fmt.Sprintf("employee %s has non-positive max_hours", raw.ID), "max_hours")
		}
		parsedEmployees = append(parsedEmployees, Employee{
			ID: raw.ID, Role: raw.Role, Skills: splitSkills(raw.SkillsRaw),
			CostPerHour: raw.CostPerHour, MaxHours: raw.MaxHours,
			Availability: raw.Availability, IsSenior: raw.IsSenior,
		})
	}

	shiftIDs := make(map[string]bool, len(shifts))
	parsedShifts := make([]Shift, 0, len(shifts))
	for i, raw := range shifts {
		if raw.ID == "" {
			ve.AddErrorWithField(apperror.CodeMissingField, fmt.Sprintf("shifts[%d] has no id", i), "id")
			continue
		}
		if shiftIDs[raw.ID] {
			ve.AddErrorWithField(apperror.CodeDuplicateID, fmt.Sprintf("duplicate shift id: %s", raw.ID), "id")
			continue
		}
		shiftIDs[raw.ID] = true
		if raw.LengthHours <= 0 {
			ve.AddErrorWithField(apperror.CodeOutOfRange, fmt.Sprintf("shift %s has non-positive length_hours", raw.ID), "length_hours")
		}
		if raw.Type != "day" && raw.Type != "night" {
			ve.AddErrorWithField(apperror.CodeInvalidInput, fmt.Sprintf("shift %s has unrecognized type %q", raw.ID, raw.Type), "type")
		}
		parsedShifts = append(parsedShifts, Shift{
			ID: raw.ID, StartHour: raw.StartHour, EndHour: raw.EndHour,
			LengthHours: raw.LengthHours, Type: raw.Type, IsICU: raw.IsICU,
		})
	}

	for i, d := range demand {
		if !shiftIDs[d.ShiftID] {
			ve.AddErrorWithField(apperror.CodeDanglingReference, fmt.Sprintf("demand[%d] references unknown shift %q", i, d.ShiftID), "shift_id")
		}
		if d.Required < 0 {
			ve.AddErrorWithField(apperror.CodeNegativeQuantity, fmt.Sprintf("demand[%d] has negative required count", i), "required")
		}
		if d.Day < 0 {
			ve.AddErrorWithField(apperror.CodeOutOfRange, fmt.Sprintf("demand[%d] has negative day index", i), "day")
		}
	}

	for i, a := range avoid {
		if !empIDs[a.EmployeeID] {
			ve.AddErrorWithField(apperror.CodeDanglingReference, fmt.Sprintf("avoid[%d] references unknown employee %q", i, a.EmployeeID), "employee_id")
		}
	}

	params, err := ParseRosteringParams(rawParams)
	if err != nil {
		ve.Add(err.(*apperror.Error))
	} else if params.HorizonDays <= 0 {
		ve.AddErrorWithField(apperror.CodeInconsistentWindow, "horizon_days must be positive", "horizon_days")
	}

	if ve.HasErrors() {
		return nil, apperror.New(apperror.CodeInvalidInput, "rostering dataset failed validation").
			WithDetails("errors", ve.ErrorMessages())
	}

	return &RosteringInstance{
		Employees: parsedEmployees,
		Shifts:    parsedShifts,
		Demand:    demand,
		Avoid:     avoid,
		Params:    params,
	}, nil
}
