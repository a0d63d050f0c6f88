package examiner

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
)

var (
	examinerCodeTag   = "examiner_code"
	examinerCodeText  = "use 2 to 32 letters, digits, dashes, underscores or slashes"
	examinerCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-_/]{1,31}$`)

	blankText = "this field cannot be blank"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(examinerCodeTag, examinerCodeValidation)
	core.RegisterCustomTranslation(validate, translator, examinerCodeTag, examinerCodeText)
}

func examinerCodeValidation(fl validator.FieldLevel) bool {
	return examinerCodeRegex.MatchString(fl.Field().String())
}

func (ne *NewExaminer) Validate(validate *validator.Validate, translator ut.Translator) error {
	ne.Name = core.CleanString(ne.Name)
	ne.ExaminerID = core.CleanString(ne.ExaminerID)
	ne.Department = core.CleanString(ne.Department)
	ne.Position = core.CleanString(ne.Position)
	ne.Email = core.CleanString(ne.Email, true /* lower */)
	ne.Phone = core.CleanString(ne.Phone)

	return core.ValidationErrorFrom(validate.Struct(ne), translator)
}

func (ue *UpdateExaminer) Validate(validate *validator.Validate, translator ut.Translator) error {
	clean := func(s *string, lower ...bool) *string {
		if s == nil {
			return nil
		}
		v := core.CleanString(*s, lower...)
		return &v
	}
	ue.Name = clean(ue.Name)
	ue.ExaminerID = clean(ue.ExaminerID)
	ue.Department = clean(ue.Department)
	ue.Position = clean(ue.Position)
	ue.Email = clean(ue.Email, true)
	ue.Phone = clean(ue.Phone)

	if err := validate.Struct(ue); err != nil {
		return core.ValidationErrorFrom(err, translator)
	}
	// omitempty skips emptied values; name & code cannot be cleared
	var fields []core.FieldError
	if ue.Name != nil && *ue.Name == "" {
		fields = append(fields, core.FieldError{Field: "name", Error: blankText})
	}
	if ue.ExaminerID != nil && *ue.ExaminerID == "" {
		fields = append(fields, core.FieldError{Field: "examiner_id", Error: blankText})
	}
	if len(fields) > 0 {
		return core.NewValidationError(nil, fields...)
	}
	return nil
}
