package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/internal/validation"
)

var testCookies = Cookies{AccessTTL: 15 * time.Minute, RefreshTTL: 7 * 24 * time.Hour}

func newTestEcho(production bool) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewErrorHandler(testCookies, production).Handle
	return e
}

func doRequest(e *echo.Echo, method, target, body string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func withCookie(name, value string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	cookies := make(map[string]*http.Cookie)
	for _, c := range (&http.Response{Header: rec.Header()}).Cookies() {
		cookies[c.Name] = c
	}
	return cookies
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func fieldErrors(t *testing.T, rec *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Errors)
	return body.Errors
}

func assertCleared(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	cookies := responseCookies(rec)
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		cookie, ok := cookies[name]
		require.True(t, ok, "cookie %s not cleared", name)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	}
	assert.Equal(t, RefreshCookiePath, cookies[RefreshTokenCookie].Path)
}
