package model

import (
	"time"
)

const (
	RoleStudent   = "student"
	RoleInstitute = "institute"
	RoleAdmin     = "admin"
)

// User represents a registered account. Role decides which profile row
// (Student or Institute) hangs off it.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	Email             string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash      string    `gorm:"column:password;size:255;not null" json:"-"` // Never expose password in JSON
	Role              string    `gorm:"column:user_type;size:20;not null;default:student;index" json:"role"`
	IsVerified        bool      `gorm:"not null;default:true" json:"is_verified"`
	VerificationToken *string   `gorm:"size:255" json:"-"`
	ResetToken        *string   `gorm:"size:255" json:"-"`
	TokenVersion      int       `gorm:"not null;default:0" json:"-"` // Increment to invalidate all user tokens
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relationships
	Student        *Student            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Institute      *Institute          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"institute,omitempty"`
	AdminAuditLog  []AdminAuditLog     `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleInstitute, RoleAdmin:
		return true
	}
	return false
}
