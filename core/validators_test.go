package core

import (
	"errors"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Name    string `json:"name" validate:"required,notblank"`
	Phone   string `json:"phone" validate:"phone"`
	Email   string `json:"email" validate:"required_with=Phone"`
	Ignored string `json:"-" validate:"max=2"`
}

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)
	return validate, translator
}

func TestValidationErrorFrom(t *testing.T) {
	validate, translator := newValidator()

	tests := []struct {
		name   string
		c      contact
		fields []FieldError
	}{
		{name: "valid", c: contact{Name: "A", Phone: "+91 98765 43210", Email: "a@b.c"}},
		{name: "valid without phone", c: contact{Name: "A"}},
		{name: "required", c: contact{}, fields: []FieldError{{Field: "name", Error: "this field is required"}}},
		{name: "blank", c: contact{Name: "  "}, fields: []FieldError{{Field: "name", Error: "this field cannot be blank"}}},
		{
			name: "phone",
			c:    contact{Name: "A", Phone: "call me"},
			fields: []FieldError{
				{Field: "phone", Error: "enter a valid phone number"},
				{Field: "email", Error: "this field is required"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidationErrorFrom(validate.Struct(tt.c), translator)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			vErr, ok := err.(*ValidationError)
			require.True(t, ok)
			assert.Equal(t, tt.fields, vErr.Fields)
			assert.Contains(t, vErr.Error(), tt.fields[0].Field+": "+tt.fields[0].Error)
			assert.Len(t, vErr.FieldMap(), len(tt.fields))
		})
	}

	assert.Nil(t, ValidationError{Err: errors.New("bad input")}.FieldMap())

	other := NewShutdownError("bye")
	assert.Equal(t, other, ValidationErrorFrom(other, translator))
	assert.True(t, IsShutdown(other))
}

func TestPhoneValidation(t *testing.T) {
	validate, _ := newValidator()
	for _, phone := range []string{"", "9876543210", "+91 98765 43210", "044-2345-6789"} {
		assert.NoError(t, validate.Var(phone, "phone"), phone)
	}
	for _, phone := range []string{"12", "phone", "+", "98765 43210 ext 5"} {
		assert.Error(t, validate.Var(phone, "phone"), phone)
	}
}
