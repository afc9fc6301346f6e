// Package validation adapts go-playground/validator to echo and reports
// failures as per-field messages keyed by JSON name.
package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "catalog/internal/errors"
)

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator that names fields by their json tag and compares
// decimal.Decimal values numerically. It adds maxbytes, a length limit on the
// UTF-8 encoding of a string.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("maxbytes", maxBytes)
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return &Validator{validate: v}
}

// Validate returns nil or a *errors.ValidationError.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("body", "invalid payload")
	}

	result := &apperrors.ValidationError{}
	for _, e := range validationErrors {
		result.Add(e.Field(), messageFor(e))
	}
	return result
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes long", e.Field(), e.Param())
	case "gt":
		if e.Param() == "0" {
			return fmt.Sprintf("%s must be a positive number", e.Field())
		}
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case "gte":
		if e.Param() == "0" {
			return fmt.Sprintf("%s must be a non-negative integer", e.Field())
		}
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	}
	return fmt.Sprintf("%s is invalid", e.Field())
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil || fl.Field().Kind() != reflect.String {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return strings.ToLower(f.Name)
	}
	return name
}
