package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/labstack/echo/v4"

	"catalog/internal/auth"
	apperrors "catalog/internal/errors"
)

// normalizer is implemented by requests that clean their fields before validation.
type normalizer interface {
	normalize()
}

// bindAndValidate decodes the request body into req and validates it.
// Decoding failures are reported as validation errors on the offending field.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return bindError(err)
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return c.Validate(req)
}

func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.NewValidationError(typeErr.Field,
			fmt.Sprintf("%s must be %s", typeErr.Field, describeKind(typeErr.Type)))
	}
	return apperrors.NewValidationError("body", "invalid request body")
}

func describeKind(t reflect.Type) string {
	if t == nil {
		return "valid"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	}
	return "valid"
}

// parseID reads the :id path parameter as a positive integer.
func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("id", "id must be a positive integer")
	}
	return uint(id), nil
}

// ClaimsFrom returns the claims the access guard verified for this request.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(auth.ContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}
