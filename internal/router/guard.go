package router

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"catalog/internal/auth"
	apperrors "catalog/internal/errors"
)

const guardErrorKey = "auth.guard_error"

// AccessGuard rejects requests without a valid, unrevoked access token.
// The token is read from the Authorization header first and the accessToken
// cookie second. Verified claims are stored under auth.ContextKey.
func AccessGuard(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  auth.ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:accessToken",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := verifyAccess(c, jwtService, tokenStore, token)
			if err != nil {
				c.Set(guardErrorKey, err)
				return nil, err
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			// Only a token that failed verification leaves an error behind.
			if err, ok := c.Get(guardErrorKey).(error); ok {
				return err
			}
			return apperrors.ErrTokenMissing
		},
	})
}

func verifyAccess(c echo.Context, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, token string) (*auth.Claims, error) {
	claims, err := jwtService.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	if claims.ID != "" {
		revoked, err := tokenStore.IsAccessTokenRevoked(c.Request().Context(), claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, apperrors.ErrTokenInvalid
		}
	}

	return claims, nil
}
