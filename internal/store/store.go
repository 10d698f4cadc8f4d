// Package store is the data-access layer over the master database: the
// organizations, admin_users and audit_logs tables plus the dynamically named
// per-organization collections.
package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"org-service/internal/model"
)

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

// Store wraps an explicit database handle. It is constructed once at startup
// and passed into every component that needs it.
type Store struct {
	db *gorm.DB
}

// New creates a Store over the given gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindOrgByName looks up an organization by its (lowercase) name.
// Returns (nil, nil) when absent.
func (s *Store) FindOrgByName(name string) (*model.Organization, error) {
	var org model.Organization
	result := s.db.Where("organization_name = ?", name).First(&org)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &org, nil
}

// FindOrgByID looks up an organization by its identifier.
// Returns (nil, nil) when absent.
func (s *Store) FindOrgByID(id string) (*model.Organization, error) {
	var org model.Organization
	result := s.db.Where("id = ?", id).First(&org)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &org, nil
}

// InsertOrg inserts a new organization record. A unique-index violation is
// reported as ErrDuplicate so concurrent creates degrade into a conflict.
func (s *Store) InsertOrg(org *model.Organization) error {
	if result := s.db.Create(org); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return result.Error
	}
	return nil
}

// UpdateOrgFields applies a field-level update to an organization record. A
// rename that loses the race for a unique name is reported as ErrDuplicate.
func (s *Store) UpdateOrgFields(id string, fields map[string]interface{}) error {
	err := s.db.Model(&model.Organization{}).Where("id = ?", id).Updates(fields).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// DeleteOrg removes an organization record.
func (s *Store) DeleteOrg(id string) error {
	return s.db.Where("id = ?", id).Delete(&model.Organization{}).Error
}

// FindAdminByEmail looks up an admin user by exact email.
// Returns (nil, nil) when absent.
func (s *Store) FindAdminByEmail(email string) (*model.AdminUser, error) {
	var admin model.AdminUser
	result := s.db.Where("email = ?", email).First(&admin)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &admin, nil
}

// FindAdminByID looks up an admin user by identifier.
// Returns (nil, nil) when absent.
func (s *Store) FindAdminByID(id string) (*model.AdminUser, error) {
	var admin model.AdminUser
	result := s.db.Where("id = ?", id).First(&admin)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &admin, nil
}

// InsertAdmin inserts a new admin user. A unique-index violation on the email
// column is reported as ErrDuplicate.
func (s *Store) InsertAdmin(admin *model.AdminUser) error {
	if result := s.db.Create(admin); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return result.Error
	}
	return nil
}

// UpdateAdminFields applies a field-level update to an admin user record. An
// email change that loses the race for a unique email is reported as
// ErrDuplicate.
func (s *Store) UpdateAdminFields(id string, fields map[string]interface{}) error {
	err := s.db.Model(&model.AdminUser{}).Where("id = ?", id).Updates(fields).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// DeleteAdmin removes an admin user record.
func (s *Store) DeleteAdmin(id string) error {
	return s.db.Where("id = ?", id).Delete(&model.AdminUser{}).Error
}

// CountOrgs returns the total number of organizations.
func (s *Store) CountOrgs() (int64, error) {
	var n int64
	err := s.db.Model(&model.Organization{}).Count(&n).Error
	return n, err
}

// CountAdmins returns the total number of admin users.
func (s *Store) CountAdmins() (int64, error) {
	var n int64
	err := s.db.Model(&model.AdminUser{}).Count(&n).Error
	return n, err
}

// CountOrgsCreatedSince counts organizations created at or after t.
func (s *Store) CountOrgsCreatedSince(t time.Time) (int64, error) {
	var n int64
	err := s.db.Model(&model.Organization{}).Where("created_at >= ?", t).Count(&n).Error
	return n, err
}

// RecentOrgs returns the most recently created organizations, newest first.
func (s *Store) RecentOrgs(limit int) ([]model.Organization, error) {
	var orgs []model.Organization
	err := s.db.Order("created_at DESC").Limit(limit).Find(&orgs).Error
	return orgs, err
}

// InsertAuditLog appends an audit entry. Audit rows are never updated or deleted.
func (s *Store) InsertAuditLog(entry *model.AuditLog) error {
	return s.db.Create(entry).Error
}

// ListAuditLogs returns audit entries for an organization, newest first, with
// an optional case-insensitive action filter. The second return value is the
// total match count before pagination.
func (s *Store) ListAuditLogs(orgName, action string, limit, offset int) ([]model.AuditLog, int64, error) {
	q := s.db.Model(&model.AuditLog{}).Where("organization_name = ?", orgName)
	if action != "" {
		q = q.Where("action ILIKE ?", "%"+action+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AuditLog
	err := q.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&logs).Error
	return logs, total, err
}

// CountAuditLogs counts audit entries; orgName == "" counts across all
// organizations.
func (s *Store) CountAuditLogs(orgName string) (int64, error) {
	q := s.db.Model(&model.AuditLog{})
	if orgName != "" {
		q = q.Where("organization_name = ?", orgName)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// CountAuditLogsSince counts audit entries recorded at or after t.
func (s *Store) CountAuditLogsSince(orgName string, t time.Time) (int64, error) {
	q := s.db.Model(&model.AuditLog{}).Where("timestamp >= ?", t)
	if orgName != "" {
		q = q.Where("organization_name = ?", orgName)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// CountAuditLogsBetween counts audit entries recorded in [from, to).
func (s *Store) CountAuditLogsBetween(orgName string, from, to time.Time) (int64, error) {
	q := s.db.Model(&model.AuditLog{}).Where("timestamp >= ? AND timestamp < ?", from, to)
	if orgName != "" {
		q = q.Where("organization_name = ?", orgName)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// Health describes the database health snapshot returned by HealthCheck.
type Health struct {
	Status      string `json:"status"`
	Database    string `json:"database,omitempty"`
	Collections int64  `json:"collections"`
	DataSize    int64  `json:"data_size"`
	Error       string `json:"error,omitempty"`
}

// HealthCheck pings the database and gathers size statistics.
func (s *Store) HealthCheck() Health {
	sqlDB, err := s.db.DB()
	if err != nil {
		return Health{Status: "unhealthy", Error: err.Error()}
	}
	if err := sqlDB.Ping(); err != nil {
		return Health{Status: "unhealthy", Error: err.Error()}
	}

	var dbName string
	if err := s.db.Raw("SELECT current_database()").Scan(&dbName).Error; err != nil {
		return Health{Status: "unhealthy", Error: err.Error()}
	}

	var tables int64
	if err := s.db.Raw(
		"SELECT count(*) FROM information_schema.tables WHERE table_schema = 'public'",
	).Scan(&tables).Error; err != nil {
		return Health{Status: "unhealthy", Database: dbName, Error: err.Error()}
	}

	var size int64
	if err := s.db.Raw("SELECT pg_database_size(current_database())").Scan(&size).Error; err != nil {
		return Health{Status: "unhealthy", Database: dbName, Error: err.Error()}
	}

	return Health{
		Status:      "healthy",
		Database:    dbName,
		Collections: tables,
		DataSize:    size,
	}
}
