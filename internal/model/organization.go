package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Organization represents a tenant record stored in the master database.
// Each organization owns exactly one admin user and one isolated data
// collection whose name is derived from the organization name.
type Organization struct {
	ID               string      `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationName string      `json:"organization_name" gorm:"type:varchar(50);uniqueIndex;not null"`
	CollectionName   string      `json:"collection_name" gorm:"type:varchar(63);not null"`
	AdminUserID      string      `json:"admin_user_id" gorm:"type:uuid;index"`
	Status           string      `json:"status" gorm:"type:varchar(20);default:'active'"`
	Metadata         OrgMetadata `json:"metadata" gorm:"type:jsonb"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// OrgMetadata carries the denormalized organization attributes. Known fields
// are typed; anything else round-trips through Extra so older records with
// additional keys are preserved on update.
type OrgMetadata struct {
	AdminEmail string                 `json:"admin_email"`
	Plan       string                 `json:"plan"`
	TotalUsers int                    `json:"total_users"`
	Extra      map[string]interface{} `json:"-"`
}

// MarshalJSON flattens Extra into the same JSON object as the known fields.
func (m OrgMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Extra)+3)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["admin_email"] = m.AdminEmail
	out["plan"] = m.Plan
	out["total_users"] = m.TotalUsers
	return json.Marshal(out)
}

// UnmarshalJSON splits known fields out of the object and keeps the rest in Extra.
func (m *OrgMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["admin_email"]; ok {
		if err := json.Unmarshal(v, &m.AdminEmail); err != nil {
			return err
		}
		delete(raw, "admin_email")
	}
	if v, ok := raw["plan"]; ok {
		if err := json.Unmarshal(v, &m.Plan); err != nil {
			return err
		}
		delete(raw, "plan")
	}
	if v, ok := raw["total_users"]; ok {
		if err := json.Unmarshal(v, &m.TotalUsers); err != nil {
			return err
		}
		delete(raw, "total_users")
	}
	if len(raw) > 0 {
		m.Extra = make(map[string]interface{}, len(raw))
		for k, v := range raw {
			var val interface{}
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			m.Extra[k] = val
		}
	}
	return nil
}

// Value implements driver.Valuer so gorm can write the metadata as jsonb.
func (m OrgMetadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading the jsonb column.
func (m *OrgMetadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = OrgMetadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata source type %T", src)
	}
}
