package models

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = NewValidator()

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// AsValidationError converts the first validator failure into a ValidationError.
// Errors of other kinds are returned unchanged.
func AsValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]

	switch fe.Tag() {
	case "required":
		return NewValidationError(fe.Field(), "is required")
	case "min":
		if fe.Kind() == reflect.String {
			return NewValidationError(fe.Field(), "must not be blank")
		}
		return NewValidationError(fe.Field(), "must be at least %s", fe.Param())
	case "url", "http_url":
		return NewValidationError(fe.Field(), "must be a valid URL")
	default:
		return NewValidationError(fe.Field(), "failed %q check", fe.Tag())
	}
}

func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return AsValidationError(err)
	}

	return nil
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func setIfPresent[V any](fields map[string]any, column string, v *V) {
	if v != nil {
		fields[column] = *v
	}
}
