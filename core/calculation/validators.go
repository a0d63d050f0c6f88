package calculation

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
)

func (nc *NewCalculation) Validate(validate *validator.Validate, translator ut.Translator) error {
	nc.ExaminerID = core.CleanString(nc.ExaminerID)
	nc.CustomID = core.CleanString(nc.CustomID)
	for i := range nc.EvaluationDays {
		nc.EvaluationDays[i].Date = core.CleanString(nc.EvaluationDays[i].Date)
	}

	if err := validate.Struct(nc); err != nil {
		return core.ValidationErrorFrom(err, translator)
	}
	if nc.EvaluationRate != nil && !nc.EvaluationRate.IsPositive() {
		return core.NewValidationError(ErrInvalidRate, core.FieldError{Field: "evaluation_rate", Error: ErrInvalidRate.Error()})
	}
	if nc.Incentive.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "incentive", Error: "the incentive cannot be negative"})
	}
	if len(nc.EvaluationDays) == 0 && (nc.TotalStaff == 0 || nc.TotalPapers == 0) {
		return core.NewValidationError(ErrNoEvaluations, core.FieldError{Field: "evaluation_days", Error: ErrNoEvaluations.Error()})
	}
	return nil
}
