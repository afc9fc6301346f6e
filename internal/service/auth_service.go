package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"catalog/internal/auth"
	apperrors "catalog/internal/errors"
	"catalog/internal/model"
	"catalog/internal/repository"
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	hasher     auth.PasswordHasher
	now        func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

// dummyPassword is hashed once so logins for unknown emails pay the same
// comparison cost as real ones.
const dummyPassword = "catalog-unknown-user-password"

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	hasher auth.PasswordHasher,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		hasher:     hasher,
		now:        time.Now,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with a hashed password.
// The lookup is a fast path only; the unique index decides races.
func (s *authService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)

	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, &apperrors.ConflictError{Field: "email"}
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     strings.TrimSpace(username),
		Email:        email,
		PasswordHash: digest,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &apperrors.ConflictError{Field: "email"}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *authService) unknownUserDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(dummyPassword)
		if err == nil {
			s.dummyDigest = digest
		}
	})
	return s.dummyDigest
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = s.hasher.Compare(password, s.unknownUserDigest())
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok || !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	payload := auth.TokenPayload{UserID: user.ID}

	accessToken, err := s.jwtService.IssueAccessToken(payload)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtService.IssueRefreshToken(payload)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh validates a refresh token and returns a new access token.
// The refresh token itself is not rotated, so its expiry never slides.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.ErrRefreshTokenMissing
	}

	claims, err := s.jwtService.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.ErrUserInactive
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return "", apperrors.ErrUserInactive
	}

	accessToken, err := s.jwtService.IssueAccessToken(auth.TokenPayload{UserID: user.ID})
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	return accessToken, nil
}

// Logout revokes the access token described by claims for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrTokenInvalid
	}

	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}

	if err := s.tokenStore.RevokeAccessToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}
