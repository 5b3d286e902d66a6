package http

import (
	"site_cms/internal/domain/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() echo.Validator {
	return &CustomValidator{validator: models.NewValidator()}
}

// Validate reports the first failing field as a models.ValidationError.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return models.AsValidationError(err)
	}

	return nil
}
