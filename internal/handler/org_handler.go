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

// OrgHandler exposes the organization lifecycle over HTTP.
type OrgHandler struct {
	orgs *service.OrgService
}

// NewOrgHandler creates an OrgHandler over the lifecycle service.
func NewOrgHandler(orgs *service.OrgService) *OrgHandler {
	return &OrgHandler{orgs: orgs}
}

// Create handles organization provisioning
func (h *OrgHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrgOperation("create")

	var req struct {
		OrganizationName string `json:"organization_name"`
		Email            string `json:"email"`
		Password         string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse create request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "invalid request"})
	}

	if !validOrgName(req.OrganizationName) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "organization name must be 3-50 alphanumeric or underscore characters"})
	}
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "invalid email address"})
	}
	if !validPassword(req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "password must be at least 8 characters"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	info, err := h.orgs.Create(req.OrganizationName, req.Email, req.Password, requestMeta(c))
	if err != nil {
		log.Error("Failed to create organization",
			zap.String("organization", req.OrganizationName), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":      true,
		"message":      "Organization created successfully",
		"organization": info,
	})
}

// Get handles the public organization lookup
func (h *OrgHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrgOperation("get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	info, err := h.orgs.Get(c.Param("name"))
	if err != nil {
		log.Warn("Organization lookup failed",
			zap.String("organization", c.Param("name")), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Organization found",
		"organization": info,
	})
}

// Update handles rename/credential updates for the caller's own organization
func (h *OrgHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrgOperation("update")

	caller := middleware.CallerFromContext(c)
	if caller == nil {
		prometheus.RecordAuthError("missing_caller_context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized", "message": "authentication required"})
	}

	var req struct {
		OrganizationName string `json:"organization_name"`
		Email            string `json:"email"`
		Password         string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "invalid request"})
	}

	if !validOrgName(req.OrganizationName) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "organization name must be 3-50 alphanumeric or underscore characters"})
	}
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "invalid email address"})
	}
	if !validPassword(req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "validation", "message": "password must be at least 8 characters"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	info, err := h.orgs.Update(caller, req.OrganizationName, req.Email, req.Password, requestMeta(c))
	if err != nil {
		log.Error("Failed to update organization", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Organization updated successfully",
		"organization": info,
	})
}

// Delete handles organization removal
func (h *OrgHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrgOperation("delete")

	caller := middleware.CallerFromContext(c)
	if caller == nil {
		prometheus.RecordAuthError("missing_caller_context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "unauthorized", "message": "authentication required"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	name := c.Param("name")
	if err := h.orgs.Delete(caller, name, requestMeta(c)); err != nil {
		log.Error("Failed to delete organization",
			zap.String("organization", name), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":           true,
		"message":           "Organization deleted successfully",
		"organization_name": name,
	})
}

// Stats handles the aggregate statistics endpoint
func (h *OrgHandler) Stats(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOrgOperation("stats")

	defer prometheus.TrackDBOperation("query")(time.Now())

	stats, err := h.orgs.Stats()
	if err != nil {
		log.Error("Failed to get organization stats", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, stats)
}
