package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DurationYears     = "years"
	DurationSemesters = "semesters"
	DurationMonths    = "months"
)

// Course represents a programme offered by a faculty. Requirements and Fees
// are free-form JSON documents owned by the institute.
type Course struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	FacultyID           uint           `gorm:"not null;index" json:"faculty_id"`
	Name                string         `gorm:"size:255;not null" json:"name"`
	Code                string         `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description         string         `gorm:"type:text" json:"description"`
	Duration            int            `gorm:"not null;default:0" json:"duration"`
	DurationUnit        string         `gorm:"size:20;not null;default:years" json:"duration_unit"`
	Requirements        datatypes.JSON `json:"requirements,omitempty"`
	Fees                datatypes.JSON `json:"fees,omitempty"`
	IntakeCapacity      int            `gorm:"not null;default:0" json:"intake_capacity"`
	ApplicationDeadline *time.Time     `gorm:"type:date" json:"application_deadline,omitempty"`
	IsActive            bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`

	// Relationships
	Faculty      *Faculty      `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
	Applications []Application `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

func IsValidDurationUnit(unit string) bool {
	return unit == DurationYears || unit == DurationSemesters || unit == DurationMonths
}
