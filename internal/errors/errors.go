package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// Both causes share one message so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenMissing is returned when a protected route receives no access token.
	ErrTokenMissing = errors.New("access token not provided")
	// ErrRefreshTokenMissing is returned when the refresh cookie is absent.
	ErrRefreshTokenMissing = errors.New("refresh token not provided")
	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned when a token signature or structure is wrong, or it was revoked.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrUserInactive is returned when a refresh token references a missing or disabled user.
	ErrUserInactive = errors.New("user associated with token is no longer valid")
	// ErrProductNotFound is returned when a product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrNoUpdateFields is returned when an update carries no fields.
	ErrNoUpdateFields = errors.New("no fields provided for update")
)

// ValidationError carries per-field validation messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// NewValidationError creates a ValidationError with a single field message.
func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, message)
	return e
}

// ConflictError reports a unique-constraint violation on Field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return e.Field + " already in use"
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

// ValidationErrorResponse is the body of a 400 caused by field validation.
type ValidationErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	// Fields is set for validation failures only.
	Fields map[string][]string
	// ClearsAuth reports whether auth cookies must be dropped with the response.
	ClearsAuth bool
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// IsInternal reports whether the error is an unclassified server failure.
func (e *HTTPError) IsInternal() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		httpErr := NewHTTPError(http.StatusBadRequest, validationErr.Error(), "VALIDATION_ERROR")
		httpErr.Fields = validationErr.Fields
		return httpErr
	}

	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return NewHTTPError(http.StatusConflict, conflictErr.Error(), "CONFLICT")
	}

	switch {
	case errors.Is(err, ErrTokenExpired):
		httpErr := NewHTTPError(http.StatusForbidden, ErrTokenExpired.Error(), "TOKEN_EXPIRED")
		httpErr.ClearsAuth = true
		return httpErr
	case errors.Is(err, ErrTokenInvalid):
		httpErr := NewHTTPError(http.StatusForbidden, ErrTokenInvalid.Error(), "TOKEN_INVALID")
		httpErr.ClearsAuth = true
		return httpErr
	case errors.Is(err, ErrUserInactive):
		httpErr := NewHTTPError(http.StatusForbidden, ErrUserInactive.Error(), "USER_INACTIVE")
		httpErr.ClearsAuth = true
		return httpErr
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenMissing):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenMissing.Error(), "TOKEN_MISSING")
	case errors.Is(err, ErrRefreshTokenMissing):
		return NewHTTPError(http.StatusUnauthorized, ErrRefreshTokenMissing.Error(), "REFRESH_TOKEN_MISSING")
	case errors.Is(err, ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, ErrProductNotFound.Error(), "PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrNoUpdateFields):
		return NewHTTPError(http.StatusBadRequest, ErrNoUpdateFields.Error(), "NO_UPDATE_FIELDS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// Chain returns the messages of err and every error it wraps, outermost first.
func Chain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}
