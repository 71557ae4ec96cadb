package model

import (
	"time"
)

const (
	PeriodUpcoming = "upcoming"
	PeriodActive   = "active"
	PeriodClosed   = "closed"
)

// AdmissionPeriod is a window during which an institute accepts applications
type AdmissionPeriod struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	InstituteID       uint      `gorm:"not null;index" json:"institute_id"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	StartDate         time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate           time.Time `gorm:"type:date;not null" json:"end_date"`
	Status            string    `gorm:"size:20;not null;default:upcoming;index" json:"status"`
	TotalApplications int       `gorm:"not null;default:0" json:"total_applications"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relationships
	Institute    *Institute    `gorm:"foreignKey:InstituteID" json:"institute,omitempty"`
	Applications []Application `gorm:"foreignKey:AdmissionPeriodID;constraint:OnDelete:SET NULL" json:"-"`
}

func (AdmissionPeriod) TableName() string {
	return "admission_periods"
}

// StatusAt derives the period status for the given instant. Dates are
// inclusive on both ends.
func (p AdmissionPeriod) StatusAt(now time.Time) string {
	day := now.UTC().Truncate(24 * time.Hour)
	start := p.StartDate.UTC().Truncate(24 * time.Hour)
	end := p.EndDate.UTC().Truncate(24 * time.Hour)

	switch {
	case day.Before(start):
		return PeriodUpcoming
	case day.After(end):
		return PeriodClosed
	default:
		return PeriodActive
	}
}
