package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	ApplicationPending     = "pending"
	ApplicationUnderReview = "under_review"
	ApplicationAccepted    = "accepted"
	ApplicationRejected    = "rejected"
	ApplicationWithdrawn   = "withdrawn"
)

// Application links a student to a course. A student applies to a given
// course at most once per admission period.
type Application struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	StudentID         uint           `gorm:"not null;uniqueIndex:idx_application_student_course_period,priority:1" json:"student_id"`
	CourseID          uint           `gorm:"not null;uniqueIndex:idx_application_student_course_period,priority:2;index" json:"course_id"`
	InstituteID       uint           `gorm:"not null;index" json:"institute_id"`
	AdmissionPeriodID *uint          `gorm:"uniqueIndex:idx_application_student_course_period,priority:3" json:"admission_period_id,omitempty"`
	PreferredMajor    string         `gorm:"size:255" json:"preferred_major"`
	PersonalStatement string         `gorm:"type:text" json:"personal_statement"`
	Status            string         `gorm:"size:20;not null;default:pending;index" json:"status"`
	ApplicationDate   time.Time      `gorm:"not null" json:"application_date"`
	ReviewedAt        *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNotes       string         `gorm:"type:text" json:"review_notes"`
	Documents         datatypes.JSON `json:"documents,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`

	// Relationships
	Student         *Student         `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Course          *Course          `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Institute       *Institute       `gorm:"foreignKey:InstituteID" json:"institute,omitempty"`
	AdmissionPeriod *AdmissionPeriod `gorm:"foreignKey:AdmissionPeriodID" json:"admission_period,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// ApplicationDocument is one entry of Application.Documents
type ApplicationDocument struct {
	Name       string    `json:"name"`
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	Pages      int       `json:"pages"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// IsReviewStatus reports whether an institute may move an application to status.
func IsReviewStatus(status string) bool {
	switch status {
	case ApplicationUnderReview, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// CanWithdraw reports whether the student may still withdraw.
func (a Application) CanWithdraw() bool {
	return a.Status == ApplicationPending || a.Status == ApplicationUnderReview
}

// StudentInstituteApplication counts a student's applications to one
// institute within an academic year.
type StudentInstituteApplication struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	StudentID        uint           `gorm:"not null;uniqueIndex:idx_student_institute_year,priority:1" json:"student_id"`
	InstituteID      uint           `gorm:"not null;uniqueIndex:idx_student_institute_year,priority:2;index" json:"institute_id"`
	AcademicYear     string         `gorm:"size:20;not null;uniqueIndex:idx_student_institute_year,priority:3" json:"academic_year"`
	ApplicationCount int            `gorm:"not null;default:0" json:"application_count"`
	CoursesApplied   datatypes.JSON `json:"courses_applied,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (StudentInstituteApplication) TableName() string {
	return "student_institute_applications"
}

// AcademicYear returns the "2025-2026" style label for t. The academic year
// starts in August.
func AcademicYear(t time.Time) string {
	y := t.Year()
	if t.Month() < time.August {
		y--
	}
	return fmt.Sprintf("%d-%d", y, y+1)
}
