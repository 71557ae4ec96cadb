package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTableNamesMatchModels(t *testing.T) {
	names := TableNames()
	assert.Len(t, names, len(Models()))
	assert.Equal(t, "users", names[0])
	assert.Contains(t, names, "applications")
	assert.Contains(t, names, "student_institute_applications")
	assert.Contains(t, names, "orders")
}

func TestAdmissionPeriodStatusAt(t *testing.T) {
	p := AdmissionPeriod{
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, PeriodUpcoming, p.StatusAt(time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, PeriodActive, p.StatusAt(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, PeriodActive, p.StatusAt(time.Date(2025, 3, 31, 22, 0, 0, 0, time.UTC)))
	assert.Equal(t, PeriodClosed, p.StatusAt(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAcademicYear(t *testing.T) {
	assert.Equal(t, "2024-2025", AcademicYear(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-2026", AcademicYear(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
}

func TestApplicationTransitions(t *testing.T) {
	assert.True(t, Application{Status: ApplicationPending}.CanWithdraw())
	assert.True(t, Application{Status: ApplicationUnderReview}.CanWithdraw())
	assert.False(t, Application{Status: ApplicationAccepted}.CanWithdraw())

	assert.True(t, IsReviewStatus(ApplicationAccepted))
	assert.False(t, IsReviewStatus(ApplicationWithdrawn))
	assert.False(t, IsReviewStatus(ApplicationPending))
}
