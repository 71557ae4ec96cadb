package institute

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmissionPeriodRequestParse(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		req    AdmissionPeriodRequest
		errMsg string
		status string
	}{
		{"active", AdmissionPeriodRequest{Name: "Fall 2025", StartDate: "2025-06-01", EndDate: "2025-06-30"}, "", model.PeriodActive},
		{"upcoming", AdmissionPeriodRequest{Name: "Spring 2026", StartDate: "2026-01-01", EndDate: "2026-02-01"}, "", model.PeriodUpcoming},
		{"closed", AdmissionPeriodRequest{Name: "Fall 2024", StartDate: "2024-06-01", EndDate: "2024-06-30"}, "", model.PeriodClosed},
		{"single day", AdmissionPeriodRequest{Name: "Walk-in", StartDate: "2025-06-15", EndDate: "2025-06-15"}, "", model.PeriodActive},
		{"end before start", AdmissionPeriodRequest{Name: "Bad", StartDate: "2025-06-30", EndDate: "2025-06-01"}, "end_date must not be before start_date", ""},
		{"bad start", AdmissionPeriodRequest{Name: "Bad", StartDate: "June 1", EndDate: "2025-06-01"}, "start_date must be YYYY-MM-DD", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p model.AdmissionPeriod
			msg := tt.req.parse(&p, now)
			assert.Equal(t, tt.errMsg, msg)
			if tt.errMsg == "" {
				assert.Equal(t, tt.status, p.Status)
				assert.Equal(t, tt.req.Name, p.Name)
			}
		})
	}
}

func TestPublicRoutesRejectBadIDs(t *testing.T) {
	h := NewInstituteHandler(database.NewStore(nil, database.Options{}), nil)

	app := fiber.New()
	app.Get("/institutes/courses/:courseId", h.GetCourse)
	app.Get("/institutes/:id", h.GetInstitute)
	app.Get("/institutes/:id/faculties", h.ListFaculties)

	for _, path := range []string{"/institutes/abc", "/institutes/0", "/institutes/-1/faculties", "/institutes/courses/x"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestListInstitutesWithoutDatabase(t *testing.T) {
	h := NewInstituteHandler(database.NewStore(nil, database.Options{}), nil)

	app := fiber.New()
	app.Get("/institutes", h.ListInstitutes)

	resp, err := app.Test(httptest.NewRequest("GET", "/institutes?search=tech&page=2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
