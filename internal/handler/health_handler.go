package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"org-service/internal/service"
	"org-service/prometheus"
)

// HealthHandler exposes the service health probe.
type HealthHandler struct {
	store service.Store
}

// NewHealthHandler creates a HealthHandler over the store.
func NewHealthHandler(store service.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check handles the health check endpoint
func (h *HealthHandler) Check(c echo.Context) error {
	health := h.store.HealthCheck()

	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, echo.Map{
		"status":    health.Status,
		"service":   "org-service",
		"timestamp": time.Now().UTC(),
		"database":  health,
	})
}

// Metrics handles the Prometheus scrape endpoint
func Metrics(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
