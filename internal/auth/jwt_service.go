package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "catalog/internal/errors"
)

const (
	// AccessTokenExpiry is the default duration for which access tokens are valid.
	AccessTokenExpiry = 15 * time.Minute
	// RefreshTokenExpiry is the default duration for which refresh tokens are valid.
	RefreshTokenExpiry = 7 * 24 * time.Hour

	// ContextKey is the echo context key holding the verified *Claims of a request.
	ContextKey = "auth.claims"
)

// TokenPayload is the identity embedded in every token.
type TokenPayload struct {
	UserID uint `json:"userId"`
}

// Claims represents JWT claims.
type Claims struct {
	TokenPayload
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// Option customizes a JWTService.
type Option func(*JWTService)

// WithTTL overrides the access and refresh token lifetimes.
func WithTTL(access, refresh time.Duration) Option {
	return func(s *JWTService) {
		s.accessTTL = access
		s.refreshTTL = refresh
	}
}

// WithClock sets the clock used both to stamp issued tokens and to check their
// time claims on verification.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

// NewJWTService creates a new JWT service with distinct access and refresh secrets.
func NewJWTService(accessSecret, refreshSecret string, opts ...Option) *JWTService {
	s := &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     AccessTokenExpiry,
		refreshTTL:    RefreshTokenExpiry,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AccessTTL returns the lifetime of access tokens.
func (s *JWTService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the lifetime of refresh tokens.
func (s *JWTService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken signs payload with the access secret.
func (s *JWTService) IssueAccessToken(payload TokenPayload) (string, error) {
	return s.sign(payload, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken signs payload with the refresh secret.
func (s *JWTService) IssueRefreshToken(payload TokenPayload) (string, error) {
	return s.sign(payload, s.refreshSecret, s.refreshTTL)
}

// VerifyAccessToken validates a token signed with the access secret.
func (s *JWTService) VerifyAccessToken(token string) (*Claims, error) {
	return s.Verify(token, s.accessSecret)
}

// VerifyRefreshToken validates a token signed with the refresh secret.
func (s *JWTService) VerifyRefreshToken(token string) (*Claims, error) {
	return s.Verify(token, s.refreshSecret)
}

func (s *JWTService) sign(payload TokenPayload, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		TokenPayload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Verify validates a JWT token against secret and returns the claims. It fails with
// ErrTokenExpired past expiry and ErrTokenInvalid for anything else.
func (s *JWTService) Verify(tokenString string, secret []byte) (*Claims, error) {
	// Time claims are checked below against s.now instead of jwt.TimeFunc.
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 || claims.ExpiresAt == nil {
		return nil, apperrors.ErrTokenInvalid
	}

	now := s.now()
	if !claims.VerifyExpiresAt(now, true) {
		return nil, apperrors.ErrTokenExpired
	}
	if !claims.VerifyNotBefore(now, false) || !claims.VerifyIssuedAt(now, false) {
		return nil, apperrors.ErrTokenInvalid
	}

	return claims, nil
}
