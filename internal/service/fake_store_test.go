package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"org-service/internal/audit"
	"org-service/internal/model"
	"org-service/internal/store"
)

// fakeStore is an in-memory Store used by the service tests. Collections are
// maps of docID -> payload keyed by their derived table name.
type fakeStore struct {
	orgs        map[string]*model.Organization
	admins      map[string]*model.AdminUser
	auditLogs   []model.AuditLog
	collections map[string]map[string]string

	failDrop bool
	failCopy bool
	// Simulate losing a uniqueness race at update time, past the pre-checks.
	dupOrgUpdate   bool
	dupAdminUpdate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orgs:        make(map[string]*model.Organization),
		admins:      make(map[string]*model.AdminUser),
		collections: make(map[string]map[string]string),
	}
}

func (f *fakeStore) FindOrgByName(name string) (*model.Organization, error) {
	for _, org := range f.orgs {
		if org.OrganizationName == name {
			copied := *org
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindOrgByID(id string) (*model.Organization, error) {
	org, ok := f.orgs[id]
	if !ok {
		return nil, nil
	}
	copied := *org
	return &copied, nil
}

func (f *fakeStore) InsertOrg(org *model.Organization) error {
	for _, existing := range f.orgs {
		if existing.OrganizationName == org.OrganizationName {
			return store.ErrDuplicate
		}
	}
	copied := *org
	f.orgs[org.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateOrgFields(id string, fields map[string]interface{}) error {
	if f.dupOrgUpdate {
		return store.ErrDuplicate
	}
	org, ok := f.orgs[id]
	if !ok {
		return errors.New("organization not found")
	}
	for k, v := range fields {
		switch k {
		case "organization_name":
			org.OrganizationName = v.(string)
		case "collection_name":
			org.CollectionName = v.(string)
		case "metadata":
			org.Metadata = v.(model.OrgMetadata)
		case "status":
			org.Status = v.(string)
		case "updated_at":
			org.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (f *fakeStore) DeleteOrg(id string) error {
	delete(f.orgs, id)
	return nil
}

func (f *fakeStore) FindAdminByEmail(email string) (*model.AdminUser, error) {
	for _, admin := range f.admins {
		if admin.Email == email {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindAdminByID(id string) (*model.AdminUser, error) {
	admin, ok := f.admins[id]
	if !ok {
		return nil, nil
	}
	copied := *admin
	return &copied, nil
}

func (f *fakeStore) InsertAdmin(admin *model.AdminUser) error {
	for _, existing := range f.admins {
		if existing.Email == admin.Email {
			return store.ErrDuplicate
		}
	}
	copied := *admin
	f.admins[admin.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateAdminFields(id string, fields map[string]interface{}) error {
	if f.dupAdminUpdate {
		return store.ErrDuplicate
	}
	admin, ok := f.admins[id]
	if !ok {
		return errors.New("admin not found")
	}
	for k, v := range fields {
		switch k {
		case "email":
			admin.Email = v.(string)
		case "password_hash":
			admin.PasswordHash = v.(string)
		case "organization_id":
			admin.OrganizationID = v.(string)
		case "is_active":
			admin.IsActive = v.(bool)
		case "last_login":
			t := v.(time.Time)
			admin.LastLogin = &t
		case "updated_at":
			admin.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (f *fakeStore) DeleteAdmin(id string) error {
	delete(f.admins, id)
	return nil
}

func (f *fakeStore) CountOrgs() (int64, error) {
	return int64(len(f.orgs)), nil
}

func (f *fakeStore) CountAdmins() (int64, error) {
	return int64(len(f.admins)), nil
}

func (f *fakeStore) CountOrgsCreatedSince(t time.Time) (int64, error) {
	var n int64
	for _, org := range f.orgs {
		if !org.CreatedAt.Before(t) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) RecentOrgs(limit int) ([]model.Organization, error) {
	orgs := make([]model.Organization, 0, len(f.orgs))
	for _, org := range f.orgs {
		orgs = append(orgs, *org)
	}
	sort.Slice(orgs, func(i, j int) bool {
		return orgs[i].CreatedAt.After(orgs[j].CreatedAt)
	})
	if len(orgs) > limit {
		orgs = orgs[:limit]
	}
	return orgs, nil
}

func (f *fakeStore) InsertAuditLog(entry *model.AuditLog) error {
	f.auditLogs = append(f.auditLogs, *entry)
	return nil
}

func (f *fakeStore) ListAuditLogs(orgName, action string, limit, offset int) ([]model.AuditLog, int64, error) {
	var matched []model.AuditLog
	for _, l := range f.auditLogs {
		if l.OrganizationName != orgName {
			continue
		}
		if action != "" && !strings.Contains(strings.ToLower(l.Action), strings.ToLower(action)) {
			continue
		}
		matched = append(matched, l)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakeStore) CountAuditLogs(orgName string) (int64, error) {
	var n int64
	for _, l := range f.auditLogs {
		if orgName == "" || l.OrganizationName == orgName {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountAuditLogsSince(orgName string, t time.Time) (int64, error) {
	var n int64
	for _, l := range f.auditLogs {
		if (orgName == "" || l.OrganizationName == orgName) && !l.Timestamp.Before(t) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountAuditLogsBetween(orgName string, from, to time.Time) (int64, error) {
	var n int64
	for _, l := range f.auditLogs {
		if (orgName == "" || l.OrganizationName == orgName) &&
			!l.Timestamp.Before(from) && l.Timestamp.Before(to) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateOrgCollection(orgName string) error {
	table := store.CollectionName(orgName)
	if _, ok := f.collections[table]; !ok {
		f.collections[table] = make(map[string]string)
	}
	f.collections[table][store.MetadataDocID] = `{"schema_version":"1.0"}`
	return nil
}

func (f *fakeStore) DropOrgCollection(orgName string) error {
	if f.failDrop {
		return errors.New("simulated drop failure")
	}
	delete(f.collections, store.CollectionName(orgName))
	return nil
}

func (f *fakeStore) CopyOrgDocuments(fromOrg, toOrg string) (int64, error) {
	if f.failCopy {
		return 0, errors.New("simulated copy failure")
	}
	from := f.collections[store.CollectionName(fromOrg)]
	to := f.collections[store.CollectionName(toOrg)]
	var copied int64
	for docID, data := range from {
		if docID == store.MetadataDocID {
			continue
		}
		to[docID] = data
		copied++
	}
	return copied, nil
}

func (f *fakeStore) OrgCollectionExists(orgName string) (bool, error) {
	_, ok := f.collections[store.CollectionName(orgName)]
	return ok, nil
}

func (f *fakeStore) CountOrgDocuments(orgName string) (int64, error) {
	coll, ok := f.collections[store.CollectionName(orgName)]
	if !ok {
		return 0, errors.New("collection does not exist")
	}
	var n int64
	for docID := range coll {
		if docID != store.MetadataDocID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) HealthCheck() store.Health {
	return store.Health{
		Status:      "healthy",
		Database:    "fake",
		Collections: int64(len(f.collections)),
	}
}

// fakeAuditor records entries synchronously for assertions.
type fakeAuditor struct {
	entries []audit.Entry
}

func (f *fakeAuditor) Record(e audit.Entry) {
	f.entries = append(f.entries, e)
}

func (f *fakeAuditor) lastAction() string {
	if len(f.entries) == 0 {
		return ""
	}
	return f.entries[len(f.entries)-1].Action
}
