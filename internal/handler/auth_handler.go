package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"org-service/internal/middleware"
	"org-service/internal/service"
	"org-service/pkg/logger"
	"org-service/prometheus"
)

// AuthHandler exposes admin authentication over HTTP.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates an AuthHandler over the auth service.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles admin authentication and token issuance
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "email and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	result, err := h.auth.Login(req.Email, req.Password, requestMeta(c))
	if err != nil {
		log.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("login_failure")
		return respondError(c, err)
	}

	prometheus.IncreaseActiveTokens()

	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"message":         "Login successful",
		"access_token":    result.AccessToken,
		"token_type":      result.TokenType,
		"expires_in":      result.ExpiresIn,
		"admin_id":        result.AdminID,
		"organization_id": result.OrganizationID,
	})
}

// Profile handles the authenticated admin profile endpoint
func (h *AuthHandler) Profile(c echo.Context) error {
	caller := middleware.CallerFromContext(c)
	if caller == nil {
		prometheus.RecordAuthError("missing_caller_context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized", "message": "authentication required"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"message":         "Profile retrieved successfully",
		"admin_id":        caller.AdminID,
		"email":           caller.Email,
		"organization_id": caller.OrganizationID,
	})
}

// Logout handles the logout confirmation endpoint. Tokens are stateless;
// logout is a client-side discard recorded for the audit trail.
func (h *AuthHandler) Logout(c echo.Context) error {
	caller := middleware.CallerFromContext(c)
	if caller == nil {
		prometheus.RecordAuthError("missing_caller_context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized", "message": "authentication required"})
	}

	h.auth.Logout(caller, requestMeta(c))
	prometheus.DecreaseActiveTokens()

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Logout successful. Please discard your access token.",
	})
}
