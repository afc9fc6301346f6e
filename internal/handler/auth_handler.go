package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "catalog/internal/errors"
	"catalog/internal/model"
	"catalog/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	cookies     Cookies
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, cookies Cookies) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *RegisterRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

func (r *LoginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// RegisterResponse represents a registration response.
type RegisterResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

// MessageResponse is a body carrying only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} errors.ValidationErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: "user registered successfully",
		User:    user.Public(),
	})
}

// Login godoc
// @Summary Login user
// @Description Sets the accessToken and refreshToken cookies. No token is returned in the body.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ValidationErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.SetAccess(c, pair.AccessToken)
	h.cookies.SetRefresh(c, pair.RefreshToken)

	return c.JSON(http.StatusOK, MessageResponse{Message: "login successful"})
}

// Refresh godoc
// @Summary Refresh access token
// @Description Reads the refreshToken cookie and resets the accessToken cookie. The refresh token is not rotated.
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return apperrors.ErrRefreshTokenMissing
	}

	accessToken, err := h.authService.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}

	h.cookies.SetAccess(c, accessToken)

	return c.JSON(http.StatusOK, MessageResponse{Message: "access token refreshed"})
}

// Logout godoc
// @Summary Logout user
// @Description Revokes the current access token and clears both auth cookies.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return apperrors.ErrTokenMissing
	}

	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return err
	}

	h.cookies.Clear(c)

	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}
