package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"org-service/internal/apperr"
	"org-service/internal/auth"
	"org-service/internal/model"
	"org-service/internal/store"
)

// Uptime describes how long the service has been running.
type Uptime struct {
	TotalSeconds float64 `json:"total_seconds"`
	Days         int     `json:"days"`
	Hours        int     `json:"hours"`
	Minutes      int     `json:"minutes"`
	Seconds      int     `json:"seconds"`
	Formatted    string  `json:"formatted"`
}

// ActivityStats counts audit activity over common windows.
type ActivityStats struct {
	Today    int64 `json:"today"`
	ThisWeek int64 `json:"this_week"`
	Total    int64 `json:"total"`
}

// Dashboard is the per-organization analytics projection.
type Dashboard struct {
	Organization  DashboardOrg     `json:"organization"`
	Activity      ActivityStats    `json:"activity"`
	Collection    CollectionStats  `json:"collection"`
	RecentLogs    []model.AuditLog `json:"recent_activity"`
	ServiceUptime Uptime           `json:"uptime"`
}

// DashboardOrg is the organization overview inside a Dashboard.
type DashboardOrg struct {
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	AgeDays   int               `json:"age_days"`
	Status    string            `json:"status"`
	Metadata  model.OrgMetadata `json:"metadata"`
}

// CollectionStats reports on the organization's isolated collection.
type CollectionStats struct {
	DocumentCount int64 `json:"document_count"`
}

// SystemMetrics is the service-wide monitoring projection.
type SystemMetrics struct {
	Timestamp     time.Time      `json:"timestamp"`
	ServiceUptime Uptime         `json:"uptime"`
	Database      store.Health   `json:"database"`
	Statistics    SystemTotals   `json:"statistics"`
	Activity      SystemActivity `json:"activity"`
}

// SystemTotals aggregates record counts across the master collections.
type SystemTotals struct {
	TotalOrganizations int64 `json:"total_organizations"`
	TotalAdminUsers    int64 `json:"total_admin_users"`
	TotalAuditLogs     int64 `json:"total_audit_logs"`
}

// SystemActivity counts recent record creation across the service.
type SystemActivity struct {
	OrganizationsCreatedToday    int64 `json:"organizations_created_today"`
	OrganizationsCreatedThisWeek int64 `json:"organizations_created_this_week"`
	AuditLogsToday               int64 `json:"audit_logs_today"`
	AuditLogsYesterday           int64 `json:"audit_logs_yesterday"`
}

// AuditLogPage is a paginated slice of an organization's audit trail.
type AuditLogPage struct {
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Skip    int              `json:"skip"`
	HasMore bool             `json:"has_more"`
	Logs    []model.AuditLog `json:"logs"`
}

// AnalyticsService serves read-only projections over the same store. It adds
// no invariants of its own.
type AnalyticsService struct {
	store     Store
	startTime time.Time
	log       *zap.Logger
}

// NewAnalyticsService wires an AnalyticsService; startTime anchors the uptime
// calculation.
func NewAnalyticsService(st Store, startTime time.Time, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{store: st, startTime: startTime, log: log}
}

// Dashboard builds the analytics projection for the caller's organization.
func (s *AnalyticsService) Dashboard(caller *auth.CallerContext) (*Dashboard, error) {
	org, err := s.store.FindOrgByID(caller.OrganizationID)
	if err != nil {
		s.log.Error("organization lookup failed", zap.Error(err))
		return nil, apperr.Internalf("failed to retrieve dashboard metrics: %v", err)
	}
	if org == nil {
		return nil, apperr.NotFoundf("organization not found")
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)
	weekAgo := today.AddDate(0, 0, -7)

	activity := ActivityStats{}
	if activity.Today, err = s.store.CountAuditLogsSince(org.OrganizationName, today); err != nil {
		return nil, apperr.Internalf("failed to retrieve dashboard metrics: %v", err)
	}
	if activity.ThisWeek, err = s.store.CountAuditLogsSince(org.OrganizationName, weekAgo); err != nil {
		return nil, apperr.Internalf("failed to retrieve dashboard metrics: %v", err)
	}
	if activity.Total, err = s.store.CountAuditLogs(org.OrganizationName); err != nil {
		return nil, apperr.Internalf("failed to retrieve dashboard metrics: %v", err)
	}

	docCount, err := s.store.CountOrgDocuments(org.OrganizationName)
	if err != nil {
		s.log.Error("failed to count organization documents", zap.Error(err))
		return nil, apperr.Internalf("failed to retrieve dashboard metrics: %v", err)
	}

	recent, _, err := s.store.ListAuditLogs(org.OrganizationName, "", 10, 0)
	if err != nil {
		return nil, apperr.Internalf("failed to retrieve dashboard metrics: %v", err)
	}

	return &Dashboard{
		Organization: DashboardOrg{
			Name:      org.OrganizationName,
			CreatedAt: org.CreatedAt,
			AgeDays:   int(now.Sub(org.CreatedAt).Hours() / 24),
			Status:    org.Status,
			Metadata:  org.Metadata,
		},
		Activity:      activity,
		Collection:    CollectionStats{DocumentCount: docCount},
		RecentLogs:    recent,
		ServiceUptime: s.uptime(),
	}, nil
}

// System builds the public service-wide metrics projection.
func (s *AnalyticsService) System() (*SystemMetrics, error) {
	totals := SystemTotals{}
	var err error
	if totals.TotalOrganizations, err = s.store.CountOrgs(); err != nil {
		return nil, apperr.Internalf("failed to retrieve system metrics: %v", err)
	}
	if totals.TotalAdminUsers, err = s.store.CountAdmins(); err != nil {
		return nil, apperr.Internalf("failed to retrieve system metrics: %v", err)
	}
	if totals.TotalAuditLogs, err = s.store.CountAuditLogs(""); err != nil {
		return nil, apperr.Internalf("failed to retrieve system metrics: %v", err)
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)
	weekAgo := today.AddDate(0, 0, -7)

	activity := SystemActivity{}
	if activity.OrganizationsCreatedToday, err = s.store.CountOrgsCreatedSince(today); err != nil {
		return nil, apperr.Internalf("failed to retrieve system metrics: %v", err)
	}
	if activity.OrganizationsCreatedThisWeek, err = s.store.CountOrgsCreatedSince(weekAgo); err != nil {
		return nil, apperr.Internalf("failed to retrieve system metrics: %v", err)
	}
	if activity.AuditLogsToday, err = s.store.CountAuditLogsSince("", today); err != nil {
		return nil, apperr.Internalf("failed to retrieve system metrics: %v", err)
	}
	if activity.AuditLogsYesterday, err = s.store.CountAuditLogsBetween("", yesterday, today); err != nil {
		return nil, apperr.Internalf("failed to retrieve system metrics: %v", err)
	}

	return &SystemMetrics{
		Timestamp:     now,
		ServiceUptime: s.uptime(),
		Database:      s.store.HealthCheck(),
		Statistics:    totals,
		Activity:      activity,
	}, nil
}

// AuditLogs returns a page of the caller's organization audit trail, newest
// first, optionally filtered by action.
func (s *AnalyticsService) AuditLogs(caller *auth.CallerContext, limit, skip int, action string) (*AuditLogPage, error) {
	org, err := s.store.FindOrgByID(caller.OrganizationID)
	if err != nil {
		s.log.Error("organization lookup failed", zap.Error(err))
		return nil, apperr.Internalf("failed to retrieve audit logs: %v", err)
	}
	if org == nil {
		return nil, apperr.NotFoundf("organization not found")
	}

	logs, total, err := s.store.ListAuditLogs(org.OrganizationName, action, limit, skip)
	if err != nil {
		return nil, apperr.Internalf("failed to retrieve audit logs: %v", err)
	}

	return &AuditLogPage{
		Total:   total,
		Limit:   limit,
		Skip:    skip,
		HasMore: int64(skip+limit) < total,
		Logs:    logs,
	}, nil
}

func (s *AnalyticsService) uptime() Uptime {
	elapsed := time.Since(s.startTime)
	days := int(elapsed.Hours()) / 24
	hours := int(elapsed.Hours()) % 24
	minutes := int(elapsed.Minutes()) % 60
	seconds := int(elapsed.Seconds()) % 60
	return Uptime{
		TotalSeconds: elapsed.Seconds(),
		Days:         days,
		Hours:        hours,
		Minutes:      minutes,
		Seconds:      seconds,
		Formatted:    fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds),
	}
}
