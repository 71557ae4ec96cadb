package model

import (
	"time"
)

// Institute is the profile of a user with the institute role. There is at
// most one institute per user.
type Institute struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Name            string    `gorm:"size:255;not null;index" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	Location        string    `gorm:"size:255" json:"location"`
	ContactEmail    string    `gorm:"size:255" json:"contact_email"`
	ContactPhone    string    `gorm:"size:20" json:"contact_phone"`
	Website         string    `gorm:"size:255" json:"website"`
	EstablishedYear *int      `json:"established_year,omitempty"`
	Accreditation   string    `gorm:"size:255" json:"accreditation"`
	TotalStudents   int       `gorm:"not null;default:0" json:"total_students"`
	LogoURL         string    `gorm:"size:500" json:"logo_url"`
	Address         string    `gorm:"type:text" json:"address"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relationships
	User                *User                         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Faculties           []Faculty                     `gorm:"foreignKey:InstituteID;constraint:OnDelete:CASCADE" json:"faculties,omitempty"`
	AdmissionPeriods    []AdmissionPeriod             `gorm:"foreignKey:InstituteID;constraint:OnDelete:CASCADE" json:"admission_periods,omitempty"`
	Applications        []Application                 `gorm:"foreignKey:InstituteID;constraint:OnDelete:CASCADE" json:"-"`
	StudentApplications []StudentInstituteApplication `gorm:"foreignKey:InstituteID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Institute) TableName() string {
	return "institutes"
}

// Faculty groups courses inside an institute
type Faculty struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	InstituteID     uint      `gorm:"not null;index" json:"institute_id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	DeanName        string    `gorm:"size:255" json:"dean_name"`
	ContactEmail    string    `gorm:"size:255" json:"contact_email"`
	ContactPhone    string    `gorm:"size:20" json:"contact_phone"`
	EstablishedYear *int      `json:"established_year,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relationships
	Institute *Institute `gorm:"foreignKey:InstituteID" json:"institute,omitempty"`
	Courses   []Course   `gorm:"foreignKey:FacultyID;constraint:OnDelete:CASCADE" json:"courses,omitempty"`
}

func (Faculty) TableName() string {
	return "faculties"
}
