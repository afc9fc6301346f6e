package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "catalog/internal/errors"
)

// InfoHandler serves the public info and private dashboard endpoints.
type InfoHandler struct{}

// NewInfoHandler creates a new info handler.
func NewInfoHandler() *InfoHandler {
	return &InfoHandler{}
}

// DashboardResponse is returned to authenticated callers.
type DashboardResponse struct {
	Message string `json:"message"`
	UserID  uint   `json:"user_id"`
}

// PublicInfo godoc
// @Summary Public information
// @Tags info
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /public/info [get]
func (h *InfoHandler) PublicInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "this is public information"})
}

// Dashboard godoc
// @Summary Private dashboard
// @Tags info
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /private/dashboard [get]
func (h *InfoHandler) Dashboard(c echo.Context) error {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return apperrors.ErrTokenMissing
	}
	return c.JSON(http.StatusOK, DashboardResponse{
		Message: "welcome to your private dashboard",
		UserID:  claims.UserID,
	})
}
