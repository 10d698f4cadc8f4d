// Package service implements the tenant lifecycle operations, admin login and
// the read-only analytics projections. Services hold explicit handles to the
// store, the credential engine and the audit recorder; there are no package
// singletons.
package service

import (
	"time"

	"org-service/internal/audit"
	"org-service/internal/model"
	"org-service/internal/store"
)

// Store is the slice of the data-access layer the services depend on.
// Satisfied by *store.Store; tests substitute an in-memory fake.
type Store interface {
	FindOrgByName(name string) (*model.Organization, error)
	FindOrgByID(id string) (*model.Organization, error)
	InsertOrg(org *model.Organization) error
	UpdateOrgFields(id string, fields map[string]interface{}) error
	DeleteOrg(id string) error

	FindAdminByEmail(email string) (*model.AdminUser, error)
	FindAdminByID(id string) (*model.AdminUser, error)
	InsertAdmin(admin *model.AdminUser) error
	UpdateAdminFields(id string, fields map[string]interface{}) error
	DeleteAdmin(id string) error

	CountOrgs() (int64, error)
	CountAdmins() (int64, error)
	CountOrgsCreatedSince(t time.Time) (int64, error)
	RecentOrgs(limit int) ([]model.Organization, error)

	ListAuditLogs(orgName, action string, limit, offset int) ([]model.AuditLog, int64, error)
	CountAuditLogs(orgName string) (int64, error)
	CountAuditLogsSince(orgName string, t time.Time) (int64, error)
	CountAuditLogsBetween(orgName string, from, to time.Time) (int64, error)

	CreateOrgCollection(orgName string) error
	DropOrgCollection(orgName string) error
	CopyOrgDocuments(fromOrg, toOrg string) (int64, error)
	OrgCollectionExists(orgName string) (bool, error)
	CountOrgDocuments(orgName string) (int64, error)

	HealthCheck() store.Health
}

// Auditor is the fire-and-forget audit side channel. Satisfied by
// *audit.Recorder.
type Auditor interface {
	Record(e audit.Entry)
}

// RequestMeta carries transport-level caller details into audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
