package model

import "time"

// AdminUser represents the single admin identity bound to an organization.
// Emails are unique service-wide and compared case-sensitively.
type AdminUser struct {
	ID             string     `json:"id" gorm:"type:uuid;primaryKey"`
	Email          string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash   string     `json:"-" gorm:"type:varchar(255);not null"`
	OrganizationID string     `json:"organization_id" gorm:"type:varchar(36);index"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
