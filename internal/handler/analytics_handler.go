package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"org-service/internal/middleware"
	"org-service/internal/service"
	"org-service/pkg/logger"
	"org-service/prometheus"
)

// AnalyticsHandler exposes the read-only analytics projections.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler creates an AnalyticsHandler over the analytics service.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard handles the per-organization dashboard endpoint
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	log := logger.FromContext(c)

	caller := middleware.CallerFromContext(c)
	if caller == nil {
		prometheus.RecordAuthError("missing_caller_context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized", "message": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	dashboard, err := h.analytics.Dashboard(caller)
	if err != nil {
		log.Error("Failed to build dashboard metrics", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   "Dashboard metrics retrieved successfully",
		"dashboard": dashboard,
	})
}

// System handles the public system-wide metrics endpoint
func (h *AnalyticsHandler) System(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	metrics, err := h.analytics.System()
	if err != nil {
		log.Error("Failed to build system metrics", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "System metrics retrieved successfully",
		"system":  metrics,
	})
}

// AuditLogs handles the paginated per-organization audit trail endpoint
func (h *AnalyticsHandler) AuditLogs(c echo.Context) error {
	log := logger.FromContext(c)

	caller := middleware.CallerFromContext(c)
	if caller == nil {
		prometheus.RecordAuthError("missing_caller_context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized", "message": "authentication required"})
	}

	limit := queryInt(c, "limit", 50)
	if limit < 1 || limit > 1000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "limit must be between 1 and 1000"})
	}
	skip := queryInt(c, "skip", 0)
	if skip < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "skip must not be negative"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	page, err := h.analytics.AuditLogs(caller, limit, skip, c.QueryParam("action"))
	if err != nil {
		log.Error("Failed to list audit logs", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Audit logs retrieved successfully",
		"pagination": echo.Map{
			"total":    page.Total,
			"limit":    page.Limit,
			"skip":     page.Skip,
			"has_more": page.HasMore,
		},
		"logs": page.Logs,
	})
}

func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
