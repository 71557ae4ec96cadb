package model

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAuditLog represents audit trail for admin actions
type AdminAuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AdminID     uint           `gorm:"not null;index" json:"admin_id"`
	Action      string         `gorm:"size:100;not null" json:"action"` // e.g., "user_delete", "institute_create"
	Resource    string         `gorm:"size:100" json:"resource"`        // e.g., "users", "institutes"
	ResourceID  string         `gorm:"size:100" json:"resource_id"`
	Payload     datatypes.JSON `json:"payload,omitempty"`
	StatusCode  int            `json:"status_code"`
	IPAddress   string         `gorm:"size:45" json:"ip_address"`
	UserAgent   string         `gorm:"type:text" json:"user_agent"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
