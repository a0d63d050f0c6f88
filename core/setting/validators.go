package setting

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
)

var (
	settingKeyTag  = "setting_key"
	settingKeyText = "unknown setting"

	invalidValueText = "invalid value for this setting"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(settingKeyTag, settingKeyValidation)
	core.RegisterCustomTranslation(validate, translator, settingKeyTag, settingKeyText)
}

func settingKeyValidation(fl validator.FieldLevel) bool {
	return IsKey(fl.Field().String())
}

func (us *UpdateSetting) Validate(validate *validator.Validate, translator ut.Translator) error {
	us.Key = core.CleanString(us.Key)
	us.Value = core.CleanString(us.Value)

	if err := validate.Struct(us); err != nil {
		return core.ValidationErrorFrom(err, translator)
	}
	if !validValue(Key(us.Key), us.Value) {
		return core.NewValidationError(nil, core.FieldError{Field: "value", Error: invalidValueText})
	}
	return nil
}
