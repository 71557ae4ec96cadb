package model

import (
	"time"

	"gorm.io/datatypes"
)

// Student is the profile of a user with the student role
type Student struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	DateOfBirth    *time.Time     `gorm:"type:date" json:"date_of_birth,omitempty"`
	Phone          string         `gorm:"size:20" json:"phone"`
	Address        string         `gorm:"type:text" json:"address"`
	HighSchool     string         `gorm:"size:255" json:"high_school"`
	GraduationYear *int           `json:"graduation_year,omitempty"`
	Grades         datatypes.JSON `json:"grades,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Relationships
	User                  *User                         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Applications          []Application                 `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"applications,omitempty"`
	InstituteApplications []StudentInstituteApplication `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Student) TableName() string {
	return "students"
}
