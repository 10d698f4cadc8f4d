package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"org-service/internal/apperr"
	"org-service/internal/service"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Validation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the structured failure body for a service error.
func respondError(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{
		"success": false,
		"error":   apperr.KindOf(err).String(),
		"message": err.Error(),
	})
}

// requestMeta extracts the transport-level caller details for audit entries.
func requestMeta(c echo.Context) service.RequestMeta {
	return service.RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
