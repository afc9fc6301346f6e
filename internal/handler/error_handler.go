package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "catalog/internal/errors"
)

// ErrorHandler renders every error returned by a handler or middleware.
type ErrorHandler struct {
	cookies    Cookies
	production bool
}

// NewErrorHandler creates an error handler. Outside production internal
// errors are reported with their message and wrapped causes.
func NewErrorHandler(cookies Cookies, production bool) *ErrorHandler {
	return &ErrorHandler{cookies: cookies, production: production}
}

// Handle implements echo.HTTPErrorHandler.
func (h *ErrorHandler) Handle(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	httpErr := classify(err)

	if httpErr.IsInternal() {
		c.Logger().Errorf("%s %s request_id=%s: %v",
			c.Request().Method, c.Request().URL.Path,
			c.Response().Header().Get(echo.HeaderXRequestID), err)
	}

	if httpErr.ClearsAuth {
		h.cookies.Clear(c)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(httpErr.StatusCode)
	} else {
		err = c.JSON(httpErr.StatusCode, h.body(httpErr, err))
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func (h *ErrorHandler) body(httpErr *apperrors.HTTPError, cause error) interface{} {
	if httpErr.Fields != nil {
		return apperrors.ValidationErrorResponse{Errors: httpErr.Fields}
	}

	resp := httpErr.ToErrorResponse()
	if chain := apperrors.Chain(cause); httpErr.Code == "INTERNAL_ERROR" && !h.production && len(chain) > 0 {
		resp.Message = chain[0]
		resp.Details = chain[1:]
	}
	return resp
}

// classify maps framework errors by their own status and everything else
// through the domain taxonomy.
func classify(err error) *apperrors.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return apperrors.NewHTTPError(he.Code, httpMessage(he), statusCode(he.Code))
	}
	return apperrors.MapErrorToHTTP(err)
}

func httpMessage(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok && msg != "" {
		return strings.ToLower(msg)
	}
	if he.Message != nil {
		return fmt.Sprint(he.Message)
	}
	return strings.ToLower(http.StatusText(he.Code))
}

// statusCode turns 429 into TOO_MANY_REQUESTS.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
