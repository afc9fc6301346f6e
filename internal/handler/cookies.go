package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// AccessTokenCookie carries the access token on every path.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie carries the refresh token to the refresh endpoint only.
	RefreshTokenCookie = "refreshToken"
	// RefreshCookiePath scopes the refresh cookie.
	RefreshCookiePath = "/api/auth/refresh"
)

// Cookies writes and clears the auth cookies.
type Cookies struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SetAccess stores the access token cookie.
func (k Cookies) SetAccess(c echo.Context, token string) {
	c.SetCookie(k.cookie(AccessTokenCookie, token, "/", k.AccessTTL))
}

// SetRefresh stores the refresh token cookie, restricted to RefreshCookiePath.
func (k Cookies) SetRefresh(c echo.Context, token string) {
	c.SetCookie(k.cookie(RefreshTokenCookie, token, RefreshCookiePath, k.RefreshTTL))
}

// Clear expires both auth cookies.
func (k Cookies) Clear(c echo.Context) {
	for _, cookie := range []*http.Cookie{
		k.cookie(AccessTokenCookie, "", "/", 0),
		k.cookie(RefreshTokenCookie, "", RefreshCookiePath, 0),
	} {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		c.SetCookie(cookie)
	}
}

func (k Cookies) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
