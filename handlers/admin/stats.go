package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"gorm.io/gorm"
)

type countRow struct {
	GroupKey string
	Count    int64
}

// RecentUser is a registration shown on the public dashboard
type RecentUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// GetPublicStats returns platform counters and the latest registrations
// GET /api/admin/stats/public
func GetPublicStats(c *fiber.Ctx, store database.Storage) error {
	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}
	db = db.WithContext(c.UserContext())

	var stats struct {
		TotalStudents     int64        `json:"total_students"`
		TotalInstitutes   int64        `json:"total_institutes"`
		TotalCourses      int64        `json:"total_courses"`
		TotalApplications int64        `json:"total_applications"`
		RecentUsers       []RecentUser `json:"recent_users"`
	}

	if err := countAll(db, map[*int64]interface{}{
		&stats.TotalStudents:     &model.Student{},
		&stats.TotalInstitutes:   &model.Institute{},
		&stats.TotalCourses:      &model.Course{},
		&stats.TotalApplications: &model.Application{},
	}); err != nil {
		return response.FromDBError(c, err)
	}

	if err := db.Model(&model.User{}).
		Select("id", "name", "user_type AS role", "created_at").
		Order("created_at DESC").
		Limit(5).
		Scan(&stats.RecentUsers).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.Success(c, stats)
}

// GetStats returns the admin dashboard statistics
// GET /api/admin/stats
func GetStats(c *fiber.Ctx, store database.Storage) error {
	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}
	db = db.WithContext(c.UserContext())

	var stats struct {
		TotalUsers             int64            `json:"total_users"`
		UsersByRole            map[string]int64 `json:"users_by_role"`
		UnverifiedUsers        int64            `json:"unverified_users"`
		TotalInstitutes        int64            `json:"total_institutes"`
		TotalFaculties         int64            `json:"total_faculties"`
		TotalCourses           int64            `json:"total_courses"`
		ActiveAdmissionPeriods int64            `json:"active_admission_periods"`
		TotalApplications      int64            `json:"total_applications"`
		ApplicationsByStatus   map[string]int64 `json:"applications_by_status"`
		ApplicationsLastWeek   int64            `json:"applications_last_week"`
		TotalOrders            int64            `json:"total_orders"`
	}

	if err := countAll(db, map[*int64]interface{}{
		&stats.TotalUsers:        &model.User{},
		&stats.TotalInstitutes:   &model.Institute{},
		&stats.TotalFaculties:    &model.Faculty{},
		&stats.TotalCourses:      &model.Course{},
		&stats.TotalApplications: &model.Application{},
		&stats.TotalOrders:       &model.Order{},
	}); err != nil {
		return response.FromDBError(c, err)
	}

	if err := db.Model(&model.User{}).Where("is_verified = ?", false).Count(&stats.UnverifiedUsers).Error; err != nil {
		return response.FromDBError(c, err)
	}
	if err := db.Model(&model.AdmissionPeriod{}).Where("status = ?", model.PeriodActive).Count(&stats.ActiveAdmissionPeriods).Error; err != nil {
		return response.FromDBError(c, err)
	}
	if err := db.Model(&model.Application{}).
		Where("application_date >= ?", time.Now().Add(-7*24*time.Hour)).
		Count(&stats.ApplicationsLastWeek).Error; err != nil {
		return response.FromDBError(c, err)
	}

	if stats.UsersByRole, err = groupCount(db, &model.User{}, "user_type"); err != nil {
		return response.FromDBError(c, err)
	}
	if stats.ApplicationsByStatus, err = groupCount(db, &model.Application{}, "status"); err != nil {
		return response.FromDBError(c, err)
	}

	return response.SuccessWithMessage(c, "Statistics retrieved successfully", stats)
}

func countAll(db *gorm.DB, counts map[*int64]interface{}) error {
	for dst, m := range counts {
		if err := db.Model(m).Count(dst).Error; err != nil {
			return err
		}
	}
	return nil
}

func groupCount(db *gorm.DB, m interface{}, column string) (map[string]int64, error) {
	var rows []countRow
	if err := db.Model(m).
		Select(column + " AS group_key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.GroupKey] = r.Count
	}
	return out, nil
}
