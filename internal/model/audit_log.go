package model

import "time"

// AuditLog is an append-only record of a sensitive operation. Rows are never
// updated or deleted.
type AuditLog struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Action           string    `json:"action" gorm:"type:varchar(50);index;not null"`
	OrganizationName string    `json:"organization_name,omitempty" gorm:"type:varchar(50);index"`
	AdminEmail       string    `json:"admin_email,omitempty" gorm:"type:varchar(255)"`
	IPAddress        string    `json:"ip_address,omitempty" gorm:"type:varchar(45)"`
	UserAgent        string    `json:"user_agent,omitempty" gorm:"type:varchar(255)"`
	Details          string    `json:"details,omitempty" gorm:"type:jsonb"`
	Success          bool      `json:"success" gorm:"default:true"`
	Timestamp        time.Time `json:"timestamp" gorm:"index"`
}
