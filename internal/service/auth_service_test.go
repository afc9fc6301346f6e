package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"catalog/internal/auth"
	apperrors "catalog/internal/errors"
	"catalog/internal/model"
	"catalog/internal/repository"
)

func newTestAuthService(repo *MockUserRepository, store *MockTokenStore) (AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService("access-secret", "refresh-secret")
	return NewAuthService(repo, jwtService, store, auth.NewBcryptHasher(bcrypt.MinCost)), jwtService
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(digest)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			email: "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
					Run(func(args mock.Arguments) { args.Get(1).(*model.User).ID = 1 }).
					Return(nil)
			},
		},
		{
			name:  "email is normalized",
			email: "  A@X.com ",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:  "email already in use",
			email: "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: 9, Email: "a@x.com"}, nil)
			},
			expectedError: &apperrors.ConflictError{Field: "email"},
		},
		{
			name:  "unique index wins a race",
			email: "a@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(repository.ErrDuplicate)
			},
			expectedError: &apperrors.ConflictError{Field: "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			svc, _ := newTestAuthService(mockRepo, new(MockTokenStore))

			user, err := svc.Register(context.Background(), "ana", tt.email, "longenough")

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "a@x.com", user.Email)
				assert.Equal(t, "ana", user.Username)
				assert.True(t, user.IsActive)
				assert.NotEqual(t, "longenough", user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenough")))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_RegisterDuplicateDoesNotCreate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: 1}, nil)
	svc, _ := newTestAuthService(mockRepo, new(MockTokenStore))

	_, err := svc.Register(context.Background(), "ana", "a@x.com", "longenough")

	var conflict *apperrors.ConflictError
	assert.True(t, errors.As(err, &conflict))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// countingHasher records how often digests are compared.
type countingHasher struct {
	*auth.BcryptHasher
	compares []string
}

func (h *countingHasher) Compare(password, digest string) (bool, error) {
	h.compares = append(h.compares, digest)
	return h.BcryptHasher.Compare(password, digest)
}

func TestAuthService_LoginUnknownEmailStillComparesDigest(t *testing.T) {
	digest := hashed(t, "longenough")
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, repository.ErrNotFound)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").
		Return(&model.User{ID: 5, Email: "a@x.com", PasswordHash: digest, IsActive: true}, nil)

	hasher := &countingHasher{BcryptHasher: auth.NewBcryptHasher(bcrypt.MinCost)}
	svc := NewAuthService(mockRepo, auth.NewJWTService("access-secret", "refresh-secret"), new(MockTokenStore), hasher)

	for i := 0; i < 2; i++ {
		_, err := svc.Login(context.Background(), "nobody@x.com", "longenough")
		assert.Equal(t, apperrors.ErrInvalidCredentials, err)
	}
	_, err := svc.Login(context.Background(), "a@x.com", "wrong-password")
	assert.Equal(t, apperrors.ErrInvalidCredentials, err)

	require.Len(t, hasher.compares, 3)
	assert.NotEmpty(t, hasher.compares[0])
	assert.Equal(t, hasher.compares[0], hasher.compares[1], "unknown-user digest is computed once")
	assert.Equal(t, digest, hasher.compares[2])
}

func TestAuthService_Login(t *testing.T) {
	digest := hashed(t, "longenough")

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "a@x.com",
			password: "longenough",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").
					Return(&model.User{ID: 5, Email: "a@x.com", PasswordHash: digest, IsActive: true}, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@x.com",
			password: "longenough",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, repository.ErrNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "a@x.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").
					Return(&model.User{ID: 5, Email: "a@x.com", PasswordHash: digest, IsActive: true}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "inactive user",
			email:    "a@x.com",
			password: "longenough",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").
					Return(&model.User{ID: 5, Email: "a@x.com", PasswordHash: digest, IsActive: false}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			svc, jwtService := newTestAuthService(mockRepo, new(MockTokenStore))

			pair, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, pair)
			} else {
				require.NoError(t, err)
				access, err := jwtService.VerifyAccessToken(pair.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, uint(5), access.UserID)
				refresh, err := jwtService.VerifyRefreshToken(pair.RefreshToken)
				require.NoError(t, err)
				assert.Equal(t, uint(5), refresh.UserID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	issuer := auth.NewJWTService("access-secret", "refresh-secret")
	valid, err := issuer.IssueRefreshToken(auth.TokenPayload{UserID: 5})
	require.NoError(t, err)

	expiredIssuer := auth.NewJWTService("access-secret", "refresh-secret",
		auth.WithClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }))
	expired, err := expiredIssuer.IssueRefreshToken(auth.TokenPayload{UserID: 5})
	require.NoError(t, err)

	accessNotRefresh, err := issuer.IssueAccessToken(auth.TokenPayload{UserID: 5})
	require.NoError(t, err)

	tests := []struct {
		name          string
		token         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "valid refresh token",
			token: valid,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, IsActive: true}, nil)
			},
		},
		{name: "missing token", token: "", setupMock: func(*MockUserRepository) {}, expectedError: apperrors.ErrRefreshTokenMissing},
		{name: "expired token", token: expired, setupMock: func(*MockUserRepository) {}, expectedError: apperrors.ErrTokenExpired},
		{name: "tampered token", token: valid + "x", setupMock: func(*MockUserRepository) {}, expectedError: apperrors.ErrTokenInvalid},
		{name: "access token presented", token: accessNotRefresh, setupMock: func(*MockUserRepository) {}, expectedError: apperrors.ErrTokenInvalid},
		{
			name:  "user deleted",
			token: valid,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(5)).Return(nil, repository.ErrNotFound)
			},
			expectedError: apperrors.ErrUserInactive,
		},
		{
			name:  "user deactivated",
			token: valid,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, IsActive: false}, nil)
			},
			expectedError: apperrors.ErrUserInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			svc, jwtService := newTestAuthService(mockRepo, new(MockTokenStore))

			accessToken, err := svc.Refresh(context.Background(), tt.token)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, accessToken)
			} else {
				require.NoError(t, err)
				claims, err := jwtService.VerifyAccessToken(accessToken)
				require.NoError(t, err)
				assert.Equal(t, uint(5), claims.UserID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshPropagatesStoreErrors(t *testing.T) {
	issuer := auth.NewJWTService("access-secret", "refresh-secret")
	token, err := issuer.IssueRefreshToken(auth.TokenPayload{UserID: 5})
	require.NoError(t, err)

	mockRepo := new(MockUserRepository)
	dbErr := errors.New("connection refused")
	mockRepo.On("FindByID", mock.Anything, uint(5)).Return(nil, dbErr)
	svc, _ := newTestAuthService(mockRepo, new(MockTokenStore))

	_, err = svc.Refresh(context.Background(), token)
	assert.ErrorIs(t, err, dbErr)
}

func TestAuthService_Logout(t *testing.T) {
	mockStore := new(MockTokenStore)
	svc, _ := newTestAuthService(new(MockUserRepository), mockStore)

	claims := &auth.Claims{
		TokenPayload: auth.TokenPayload{UserID: 5},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
		},
	}
	mockStore.On("RevokeAccessToken", mock.Anything, "jti-1", mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 9*time.Minute && ttl <= 10*time.Minute
	})).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), claims))
	mockStore.AssertExpectations(t)

	assert.ErrorIs(t, svc.Logout(context.Background(), nil), apperrors.ErrTokenInvalid)
}
