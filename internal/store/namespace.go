package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MetadataDocID is the reserved document identifier every organization
// collection holds from creation.
const MetadataDocID = "metadata"

// maxCollectionNameLen is the Postgres identifier limit.
const maxCollectionNameLen = 63

// SanitizeCollectionName maps an arbitrary string onto a safe table name:
// lowercase, every character outside [a-z0-9_] replaced with an underscore,
// forced to start with a letter or underscore, truncated to the identifier
// limit. Idempotent: sanitizing an already-sanitized name is a no-op.
func SanitizeCollectionName(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	sanitized := b.String()
	if sanitized != "" && !(sanitized[0] >= 'a' && sanitized[0] <= 'z') && sanitized[0] != '_' {
		sanitized = "_" + sanitized
	}
	if len(sanitized) > maxCollectionNameLen {
		sanitized = sanitized[:maxCollectionNameLen]
	}
	return sanitized
}

// CollectionName derives the collection name for an organization. The result
// is a deterministic transform of the organization name.
func CollectionName(orgName string) string {
	return SanitizeCollectionName("org_" + strings.ToLower(orgName))
}

// collectionMetadata is the reserved metadata document written at creation.
type collectionMetadata struct {
	OrganizationName string    `json:"organization_name"`
	SchemaVersion    string    `json:"schema_version"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateOrgCollection creates the isolated collection for an organization and
// writes its metadata stub. Table names are interpolated directly: they come
// exclusively from SanitizeCollectionName, which only emits [a-z0-9_].
func (s *Store) CreateOrgCollection(orgName string) error {
	table := CollectionName(orgName)

	createSQL := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			doc_id text PRIMARY KEY,
			data jsonb NOT NULL DEFAULT '{}'::jsonb,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, table)
	if err := s.db.Exec(createSQL).Error; err != nil {
		return err
	}

	meta, err := json.Marshal(collectionMetadata{
		OrganizationName: orgName,
		SchemaVersion:    "1.0",
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	insertSQL := fmt.Sprintf(
		`INSERT INTO %s (doc_id, data) VALUES (?, ?::jsonb)
		 ON CONFLICT (doc_id) DO UPDATE SET data = EXCLUDED.data`, table)
	return s.db.Exec(insertSQL, MetadataDocID, string(meta)).Error
}

// DropOrgCollection removes an organization collection and all its documents.
func (s *Store) DropOrgCollection(orgName string) error {
	table := CollectionName(orgName)
	return s.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error
}

// CopyOrgDocuments copies every document except the metadata stub from one
// organization collection to another. Returns the number of documents copied.
func (s *Store) CopyOrgDocuments(fromOrg, toOrg string) (int64, error) {
	from := CollectionName(fromOrg)
	to := CollectionName(toOrg)

	copySQL := fmt.Sprintf(
		`INSERT INTO %s (doc_id, data, created_at)
		 SELECT doc_id, data, created_at FROM %s WHERE doc_id <> ?`, to, from)
	result := s.db.Exec(copySQL, MetadataDocID)
	return result.RowsAffected, result.Error
}

// OrgCollectionExists reports whether the organization collection is present.
func (s *Store) OrgCollectionExists(orgName string) (bool, error) {
	var exists bool
	err := s.db.Raw(
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = ?
		)`, CollectionName(orgName)).Scan(&exists).Error
	return exists, err
}

// CountOrgDocuments counts the documents in an organization collection,
// excluding the metadata stub.
func (s *Store) CountOrgDocuments(orgName string) (int64, error) {
	table := CollectionName(orgName)
	var n int64
	err := s.db.Raw(
		fmt.Sprintf("SELECT count(*) FROM %s WHERE doc_id <> ?", table),
		MetadataDocID,
	).Scan(&n).Error
	return n, err
}
