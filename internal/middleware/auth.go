package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"org-service/internal/auth"
	"org-service/pkg/logger"
	"org-service/prometheus"
)

// CallerKey is the echo context key the authenticated caller is stored under.
const CallerKey = "caller"

// AuthMiddleware resolves the bearer token through the authorization gate and
// stores the caller context for handlers. All failures get the same 401 body.
func AuthMiddleware(gate *auth.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
			}

			caller, err := gate.Authenticate(parts[1])
			if err != nil {
				log.Warn("Token rejected", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
			}

			c.Set(CallerKey, caller)
			return next(c)
		}
	}
}

// CallerFromContext returns the authenticated caller set by AuthMiddleware,
// or nil outside an authenticated route.
func CallerFromContext(c echo.Context) *auth.CallerContext {
	caller, ok := c.Get(CallerKey).(*auth.CallerContext)
	if !ok {
		return nil
	}
	return caller
}
