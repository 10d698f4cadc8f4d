package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"org-service/internal/apperr"
	"org-service/internal/audit"
	"org-service/internal/auth"
	"org-service/internal/model"
	"org-service/internal/store"
)

// OrgInfo is the public projection of an organization record.
type OrgInfo struct {
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	CollectionName   string    `json:"collection_name"`
	AdminEmail       string    `json:"admin_email"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RecentOrg is one entry of the Stats recent-organizations list.
type RecentOrg struct {
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	AdminEmail       string    `json:"admin_email"`
	CreatedAt        time.Time `json:"created_at"`
}

// OrgStats is the aggregate statistics snapshot.
type OrgStats struct {
	TotalOrganizations  int64        `json:"total_organizations"`
	TotalAdminUsers     int64        `json:"total_admin_users"`
	RecentOrganizations []RecentOrg  `json:"recent_organizations"`
	DatabaseHealth      store.Health `json:"database_health"`
}

// OrgService orchestrates the tenant lifecycle: create, read, rename with
// data migration, delete and aggregate stats.
type OrgService struct {
	store Store
	audit Auditor
	log   *zap.Logger
}

// NewOrgService wires an OrgService.
func NewOrgService(st Store, auditor Auditor, log *zap.Logger) *OrgService {
	return &OrgService{store: st, audit: auditor, log: log}
}

// Create provisions a new organization: isolated collection first, then the
// admin identity, then the organization record. A crash mid-way leaves at
// worst an orphaned empty collection, never a record pointing at nothing.
func (s *OrgService) Create(name, email, password string, meta RequestMeta) (*OrgInfo, error) {
	name = strings.ToLower(name)

	existing, err := s.store.FindOrgByName(name)
	if err != nil {
		s.log.Error("organization lookup failed", zap.Error(err))
		return nil, apperr.Internalf("failed to create organization: %v", err)
	}
	if existing != nil {
		return nil, apperr.Conflictf("organization '%s' already exists", name)
	}

	existingAdmin, err := s.store.FindAdminByEmail(email)
	if err != nil {
		s.log.Error("admin lookup failed", zap.Error(err))
		return nil, apperr.Internalf("failed to create organization: %v", err)
	}
	if existingAdmin != nil {
		return nil, apperr.Conflictf("admin email '%s' is already registered", email)
	}

	collectionName := store.CollectionName(name)
	if err := s.store.CreateOrgCollection(name); err != nil {
		s.log.Error("failed to create organization collection",
			zap.String("collection", collectionName), zap.Error(err))
		return nil, apperr.Internalf("failed to create organization: %v", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Internalf("failed to create organization: %v", err)
	}

	now := time.Now().UTC()
	admin := &model.AdminUser{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		// Back-filled once the organization record exists.
		OrganizationID: "",
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.InsertAdmin(admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflictf("admin email '%s' is already registered", email)
		}
		s.log.Error("failed to insert admin user", zap.Error(err))
		return nil, apperr.Internalf("failed to create organization: %v", err)
	}

	org := &model.Organization{
		ID:               uuid.New().String(),
		OrganizationName: name,
		CollectionName:   collectionName,
		AdminUserID:      admin.ID,
		Status:           "active",
		Metadata: model.OrgMetadata{
			AdminEmail: email,
			Plan:       "basic",
			TotalUsers: 1,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertOrg(org); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the race against a concurrent create for the same name.
			return nil, apperr.Conflictf("organization '%s' already exists", name)
		}
		s.log.Error("failed to insert organization", zap.Error(err))
		return nil, apperr.Internalf("failed to create organization: %v", err)
	}

	if err := s.store.UpdateAdminFields(admin.ID, map[string]interface{}{
		"organization_id": org.ID,
		"updated_at":      time.Now().UTC(),
	}); err != nil {
		s.log.Error("failed to back-fill admin organization id", zap.Error(err))
		return nil, apperr.Internalf("failed to create organization: %v", err)
	}

	s.audit.Record(audit.Entry{
		Action:           "organization_created",
		OrganizationName: name,
		AdminEmail:       email,
		IPAddress:        meta.IPAddress,
		UserAgent:        meta.UserAgent,
		Details:          map[string]interface{}{"collection_name": collectionName},
		Success:          true,
	})

	s.log.Info("Organization created",
		zap.String("organization", name),
		zap.String("collection", collectionName))

	return &OrgInfo{
		OrganizationID:   org.ID,
		OrganizationName: org.OrganizationName,
		CollectionName:   org.CollectionName,
		AdminEmail:       email,
		CreatedAt:        org.CreatedAt,
		UpdatedAt:        org.UpdatedAt,
	}, nil
}

// Get returns the public projection for an organization, looked up
// case-insensitively.
func (s *OrgService) Get(name string) (*OrgInfo, error) {
	org, err := s.store.FindOrgByName(strings.ToLower(name))
	if err != nil {
		s.log.Error("organization lookup failed", zap.Error(err))
		return nil, apperr.Internalf("failed to retrieve organization: %v", err)
	}
	if org == nil {
		return nil, apperr.NotFoundf("organization '%s' not found", name)
	}

	return &OrgInfo{
		OrganizationID:   org.ID,
		OrganizationName: org.OrganizationName,
		CollectionName:   org.CollectionName,
		AdminEmail:       org.Metadata.AdminEmail,
		CreatedAt:        org.CreatedAt,
		UpdatedAt:        org.UpdatedAt,
	}, nil
}

// Update applies new name/email/password to the caller's own organization.
// A name change migrates the isolated collection: create new, copy every
// document except the metadata stub, drop old, then update the organization
// and admin records in that order. The copy-drop-update sequence is
// best-effort ordered, not atomic; a failure in the middle is left for
// operational reconciliation.
func (s *OrgService) Update(caller *auth.CallerContext, newName, newEmail, newPassword string, meta RequestMeta) (*OrgInfo, error) {
	org, err := s.store.FindOrgByID(caller.OrganizationID)
	if err != nil {
		s.log.Error("organization lookup failed", zap.Error(err))
		return nil, apperr.Internalf("failed to update organization: %v", err)
	}
	if org == nil {
		return nil, apperr.NotFoundf("current organization not found")
	}

	oldName := org.OrganizationName
	newName = strings.ToLower(newName)
	renaming := oldName != newName

	if renaming {
		taken, err := s.store.FindOrgByName(newName)
		if err != nil {
			s.log.Error("organization lookup failed", zap.Error(err))
			return nil, apperr.Internalf("failed to update organization: %v", err)
		}
		if taken != nil && taken.ID != org.ID {
			return nil, apperr.Conflictf("organization name '%s' already exists", newName)
		}
	}

	if newEmail != caller.Email {
		other, err := s.store.FindAdminByEmail(newEmail)
		if err != nil {
			s.log.Error("admin lookup failed", zap.Error(err))
			return nil, apperr.Internalf("failed to update organization: %v", err)
		}
		if other != nil && other.ID != caller.AdminID {
			return nil, apperr.Conflictf("email '%s' is already registered", newEmail)
		}
	}

	// Password is re-hashed unconditionally; there is no unchanged fast path.
	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, apperr.Internalf("failed to update organization: %v", err)
	}

	if renaming {
		if err := s.store.CreateOrgCollection(newName); err != nil {
			s.log.Error("failed to create new organization collection",
				zap.String("organization", newName), zap.Error(err))
			return nil, apperr.Internalf("failed to update organization: %v", err)
		}
		copied, err := s.store.CopyOrgDocuments(oldName, newName)
		if err != nil {
			s.log.Error("failed to migrate organization documents",
				zap.String("from", oldName), zap.String("to", newName), zap.Error(err))
			return nil, apperr.Internalf("failed to update organization: %v", err)
		}
		if err := s.store.DropOrgCollection(oldName); err != nil {
			s.log.Error("failed to drop old organization collection",
				zap.String("organization", oldName), zap.Error(err))
			return nil, apperr.Internalf("failed to update organization: %v", err)
		}
		s.log.Info("Organization data migrated",
			zap.String("from", oldName),
			zap.String("to", newName),
			zap.Int64("documents", copied))
	}

	now := time.Now().UTC()
	metadata := org.Metadata
	metadata.AdminEmail = newEmail

	orgFields := map[string]interface{}{
		"metadata":   metadata,
		"updated_at": now,
	}
	if renaming {
		orgFields["organization_name"] = newName
		orgFields["collection_name"] = store.CollectionName(newName)
	}
	if err := s.store.UpdateOrgFields(org.ID, orgFields); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the race against a concurrent rename to the same name.
			return nil, apperr.Conflictf("organization name '%s' already exists", newName)
		}
		s.log.Error("failed to update organization record", zap.Error(err))
		return nil, apperr.Internalf("failed to update organization: %v", err)
	}

	if err := s.store.UpdateAdminFields(caller.AdminID, map[string]interface{}{
		"email":         newEmail,
		"password_hash": passwordHash,
		"updated_at":    now,
	}); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflictf("email '%s' is already registered", newEmail)
		}
		s.log.Error("failed to update admin record", zap.Error(err))
		return nil, apperr.Internalf("failed to update organization: %v", err)
	}

	s.audit.Record(audit.Entry{
		Action:           "organization_updated",
		OrganizationName: newName,
		AdminEmail:       newEmail,
		IPAddress:        meta.IPAddress,
		UserAgent:        meta.UserAgent,
		Details: map[string]interface{}{
			"old_name":      oldName,
			"new_name":      newName,
			"data_migrated": renaming,
		},
		Success: true,
	})

	s.log.Info("Organization updated",
		zap.String("old_name", oldName),
		zap.String("new_name", newName))

	return &OrgInfo{
		OrganizationID:   org.ID,
		OrganizationName: newName,
		CollectionName:   store.CollectionName(newName),
		AdminEmail:       newEmail,
		CreatedAt:        org.CreatedAt,
		UpdatedAt:        now,
	}, nil
}

// Delete removes the caller's organization. The collection drop is
// authoritative: if it fails, the organization and admin records are left
// untouched.
func (s *OrgService) Delete(caller *auth.CallerContext, name string, meta RequestMeta) error {
	name = strings.ToLower(name)

	org, err := s.store.FindOrgByID(caller.OrganizationID)
	if err != nil {
		s.log.Error("organization lookup failed", zap.Error(err))
		return apperr.Internalf("failed to delete organization: %v", err)
	}
	// The path name must match the caller's own organization; a valid token
	// for a different tenant is denied, not told what exists.
	if org == nil || org.OrganizationName != name {
		return apperr.Unauthorizedf("organization not found or access denied")
	}

	if err := s.store.DropOrgCollection(name); err != nil {
		s.log.Error("failed to drop organization collection",
			zap.String("organization", name), zap.Error(err))
		return apperr.Internalf("failed to delete organization data")
	}

	if err := s.store.DeleteAdmin(caller.AdminID); err != nil {
		s.log.Error("failed to delete admin user", zap.Error(err))
		return apperr.Internalf("failed to delete organization: %v", err)
	}
	if err := s.store.DeleteOrg(org.ID); err != nil {
		s.log.Error("failed to delete organization record", zap.Error(err))
		return apperr.Internalf("failed to delete organization: %v", err)
	}

	s.audit.Record(audit.Entry{
		Action:           "organization_deleted",
		OrganizationName: name,
		AdminEmail:       caller.Email,
		IPAddress:        meta.IPAddress,
		UserAgent:        meta.UserAgent,
		Details:          map[string]interface{}{"collection_name": org.CollectionName},
		Success:          true,
	})

	s.log.Info("Organization deleted", zap.String("organization", name))
	return nil
}

// Stats returns aggregate counts, the most recent organizations and a store
// health snapshot.
func (s *OrgService) Stats() (*OrgStats, error) {
	totalOrgs, err := s.store.CountOrgs()
	if err != nil {
		return nil, apperr.Internalf("failed to get organization stats: %v", err)
	}
	totalAdmins, err := s.store.CountAdmins()
	if err != nil {
		return nil, apperr.Internalf("failed to get organization stats: %v", err)
	}
	orgs, err := s.store.RecentOrgs(10)
	if err != nil {
		return nil, apperr.Internalf("failed to get organization stats: %v", err)
	}

	recent := make([]RecentOrg, 0, len(orgs))
	for _, org := range orgs {
		recent = append(recent, RecentOrg{
			OrganizationID:   org.ID,
			OrganizationName: org.OrganizationName,
			AdminEmail:       org.Metadata.AdminEmail,
			CreatedAt:        org.CreatedAt,
		})
	}

	return &OrgStats{
		TotalOrganizations:  totalOrgs,
		TotalAdminUsers:     totalAdmins,
		RecentOrganizations: recent,
		DatabaseHealth:      s.store.HealthCheck(),
	}, nil
}
