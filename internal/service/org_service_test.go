package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"org-service/internal/apperr"
	"org-service/internal/auth"
	"org-service/internal/store"
)

func newTestOrgService() (*OrgService, *fakeStore, *fakeAuditor) {
	fs := newFakeStore()
	auditor := &fakeAuditor{}
	return NewOrgService(fs, auditor, zap.NewNop()), fs, auditor
}

// callerFor builds the caller context the authorization gate would produce
// for the organization's admin.
func callerFor(t *testing.T, fs *fakeStore, orgName string) *auth.CallerContext {
	t.Helper()
	org, err := fs.FindOrgByName(orgName)
	require.NoError(t, err)
	require.NotNil(t, org)
	admin, err := fs.FindAdminByID(org.AdminUserID)
	require.NoError(t, err)
	require.NotNil(t, admin)
	return &auth.CallerContext{
		AdminID:        admin.ID,
		Email:          admin.Email,
		OrganizationID: org.ID,
	}
}

func TestCreateThenGetReturnsLowercaseName(t *testing.T) {
	svc, fs, auditor := newTestOrgService()

	created, err := svc.Create("AcmeCorp", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, "acmecorp", created.OrganizationName)
	require.Equal(t, store.CollectionName("acmecorp"), created.CollectionName)

	got, err := svc.Get("ACMECORP")
	require.NoError(t, err)
	require.Equal(t, "acmecorp", got.OrganizationName)
	require.Equal(t, "admin@acme.com", got.AdminEmail)

	exists, err := fs.OrgCollectionExists("acmecorp")
	require.NoError(t, err)
	require.True(t, exists)

	require.Equal(t, "organization_created", auditor.lastAction())
}

func TestCreateBackfillsAdminOrganizationID(t *testing.T) {
	svc, fs, _ := newTestOrgService()

	created, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	admin, err := fs.FindAdminByEmail("admin@acme.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	require.Equal(t, created.OrganizationID, admin.OrganizationID)
	require.True(t, admin.IsActive)
}

func TestCreateDuplicateNameIsConflict(t *testing.T) {
	svc, fs, _ := newTestOrgService()

	_, err := svc.Create("acme", "first@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	_, err = svc.Create("ACME", "second@acme.com", "Secret123!", RequestMeta{})
	require.Error(t, err)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// No duplicate records or collections left behind.
	require.Len(t, fs.orgs, 1)
	require.Len(t, fs.admins, 1)
	require.Len(t, fs.collections, 1)
}

func TestCreateDuplicateEmailIsConflict(t *testing.T) {
	svc, _, _ := newTestOrgService()

	_, err := svc.Create("acme", "shared@example.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	_, err = svc.Create("globex", "shared@example.com", "Secret123!", RequestMeta{})
	require.Error(t, err)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestGetMissingOrganizationIsNotFound(t *testing.T) {
	svc, _, _ := newTestOrgService()

	_, err := svc.Get("nosuchorg")
	require.Error(t, err)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestUpdateRenameMigratesDocuments(t *testing.T) {
	svc, fs, auditor := newTestOrgService()

	_, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	// Tenant-authored documents alongside the metadata stub.
	coll := fs.collections[store.CollectionName("acme")]
	coll["doc1"] = `{"v":1}`
	coll["doc2"] = `{"v":2}`
	coll["doc3"] = `{"v":3}`

	caller := callerFor(t, fs, "acme")
	updated, err := svc.Update(caller, "globex", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, "globex", updated.OrganizationName)

	// The new collection holds exactly the non-metadata documents.
	count, err := fs.CountOrgDocuments("globex")
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	// The old collection no longer exists.
	exists, err := fs.OrgCollectionExists("acme")
	require.NoError(t, err)
	require.False(t, exists)

	// The record's derived collection name stayed in sync with the rename.
	org, err := fs.FindOrgByName("globex")
	require.NoError(t, err)
	require.NotNil(t, org)
	require.Equal(t, store.CollectionName("globex"), org.CollectionName)

	require.Equal(t, "organization_updated", auditor.lastAction())
	require.Equal(t, true, auditor.entries[len(auditor.entries)-1].Details["data_migrated"])
}

func TestUpdateRenameToTakenNameIsConflict(t *testing.T) {
	svc, fs, _ := newTestOrgService()

	_, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)
	_, err = svc.Create("globex", "admin@globex.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	coll := fs.collections[store.CollectionName("acme")]
	coll["doc1"] = `{"v":1}`

	caller := callerFor(t, fs, "acme")
	_, err = svc.Update(caller, "globex", "admin@acme.com", "Secret123!", RequestMeta{})
	require.Error(t, err)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// The original organization and its collection are untouched.
	org, err := fs.FindOrgByName("acme")
	require.NoError(t, err)
	require.NotNil(t, org)
	count, err := fs.CountOrgDocuments("acme")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestUpdateSameNameSkipsMigration(t *testing.T) {
	svc, fs, auditor := newTestOrgService()

	_, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	before, err := fs.FindAdminByEmail("admin@acme.com")
	require.NoError(t, err)

	caller := callerFor(t, fs, "acme")
	updated, err := svc.Update(caller, "acme", "new@acme.com", "Changed456!", RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, "acme", updated.OrganizationName)
	require.Equal(t, "new@acme.com", updated.AdminEmail)

	// Password is re-hashed unconditionally.
	after, err := fs.FindAdminByEmail("new@acme.com")
	require.NoError(t, err)
	require.NotNil(t, after)
	require.NotEqual(t, before.PasswordHash, after.PasswordHash)

	// Metadata mirrors the new email.
	org, err := fs.FindOrgByName("acme")
	require.NoError(t, err)
	require.Equal(t, "new@acme.com", org.Metadata.AdminEmail)

	require.Equal(t, false, auditor.entries[len(auditor.entries)-1].Details["data_migrated"])
}

func TestUpdateRenameRaceOnRecordWriteIsConflict(t *testing.T) {
	svc, fs, _ := newTestOrgService()

	_, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	// The taken-name pre-check passes, then the record write trips the
	// unique index as a concurrent rename would.
	fs.dupOrgUpdate = true

	caller := callerFor(t, fs, "acme")
	_, err = svc.Update(caller, "globex", "admin@acme.com", "Secret123!", RequestMeta{})
	require.Error(t, err)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestUpdateEmailRaceOnAdminWriteIsConflict(t *testing.T) {
	svc, fs, _ := newTestOrgService()

	_, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	fs.dupAdminUpdate = true

	caller := callerFor(t, fs, "acme")
	_, err = svc.Update(caller, "acme", "new@acme.com", "Secret123!", RequestMeta{})
	require.Error(t, err)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestUpdateEmailTakenByOtherAdminIsConflict(t *testing.T) {
	svc, fs, _ := newTestOrgService()

	_, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)
	_, err = svc.Create("globex", "admin@globex.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	caller := callerFor(t, fs, "acme")
	_, err = svc.Update(caller, "acme", "admin@globex.com", "Secret123!", RequestMeta{})
	require.Error(t, err)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestDeleteRemovesRecordsAndCollection(t *testing.T) {
	svc, fs, auditor := newTestOrgService()

	_, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	caller := callerFor(t, fs, "acme")
	require.NoError(t, svc.Delete(caller, "ACME", RequestMeta{}))

	require.Empty(t, fs.orgs)
	require.Empty(t, fs.admins)
	require.Empty(t, fs.collections)
	require.Equal(t, "organization_deleted", auditor.lastAction())
}

func TestDeleteFailedCollectionDropLeavesRecordsIntact(t *testing.T) {
	svc, fs, _ := newTestOrgService()

	_, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	caller := callerFor(t, fs, "acme")
	fs.failDrop = true

	err = svc.Delete(caller, "acme", RequestMeta{})
	require.Error(t, err)
	require.Equal(t, apperr.Internal, apperr.KindOf(err))

	// No partial deletion: the records survive a failed collection drop.
	require.Len(t, fs.orgs, 1)
	require.Len(t, fs.admins, 1)
}

func TestDeleteByAdminOfDifferentTenantIsDenied(t *testing.T) {
	svc, fs, _ := newTestOrgService()

	_, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)
	_, err = svc.Create("globex", "admin@globex.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	globexCaller := callerFor(t, fs, "globex")
	err = svc.Delete(globexCaller, "acme", RequestMeta{})
	require.Error(t, err)
	require.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	// Both organizations still exist.
	require.Len(t, fs.orgs, 2)
	require.Len(t, fs.collections, 2)
}

func TestStatsReportsCountsAndRecentOrgs(t *testing.T) {
	svc, fs, _ := newTestOrgService()

	_, err := svc.Create("acme", "admin@acme.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)
	_, err = svc.Create("globex", "admin@globex.com", "Secret123!", RequestMeta{})
	require.NoError(t, err)

	// Force distinct creation times so ordering is deterministic.
	for _, org := range fs.orgs {
		if org.OrganizationName == "globex" {
			org.CreatedAt = org.CreatedAt.Add(time.Minute)
		}
	}

	stats, err := svc.Stats()
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.TotalOrganizations)
	require.EqualValues(t, 2, stats.TotalAdminUsers)
	require.Len(t, stats.RecentOrganizations, 2)
	require.Equal(t, "globex", stats.RecentOrganizations[0].OrganizationName)
	require.Equal(t, "healthy", stats.DatabaseHealth.Status)
}
