package datasetintake

import "mfsol/pkg/apperror"

// IntakeSeasonal validates a four-season demand breakdown plus plant
// economics parameters and builds the Problem Instance the seasonal
// production builder consumes.
func IntakeSeasonal(seasonDemand [4]float64, rawParams map[string]any) (*SeasonalInstance, error) {
	ve := apperror.NewValidationErrors()

	for _, d := range seasonDemand {
		if d < 0 {
			ve.AddError(apperror.CodeNegativeQuantity, "season demand must not be negative")
		}
	}

	params, err := ParseSeasonalParams(rawParams)
	if err != nil {
		ve.Add(err.(*apperror.Error))
	} else {
		if params.HoursPerUnit <= 0 {
			ve.AddErrorWithField(apperror.CodeOutOfRange, "hours_per_unit must be positive", "hours_per_unit")
		}
		if params.RegularHours <= 0 {
			ve.AddErrorWithField(apperror.CodeOutOfRange, "regular_hours must be positive", "regular_hours")
		}
		if params.InitialWorkers < 0 {
			ve.AddErrorWithField(apperror.CodeNegativeQuantity, "initial_workers must not be negative", "initial_workers")
		}
		if params.InitialStock < 0 {
			ve.AddErrorWithField(apperror.CodeNegativeQuantity, "initial_stock must not be negative", "initial_stock")
		}
	}

	if ve.HasErrors() {
		return nil, apperror.New(apperror.CodeInvalidInput, "seasonal production dataset failed validation").
			WithDetails("errors", ve.ErrorMessages())
	}

	return &SeasonalInstance{SeasonDemand: seasonDemand, Params: params}, nil
}
