package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
)

// ListApplications lists every application on the platform
// GET /api/admin/applications
func ListApplications(c *fiber.Ctx, store database.Storage) error {
	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := db.WithContext(c.UserContext()).Model(&model.Application{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if instituteID := c.QueryInt("institute_id"); instituteID > 0 {
		query = query.Where("institute_id = ?", instituteID)
	}
	if courseID := c.QueryInt("course_id"); courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.FromDBError(c, err)
	}

	var applications []model.Application
	if err := query.
		Preload("Student.User").
		Preload("Course").
		Preload("Institute").
		Order("application_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&applications).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.Paginated(c, applications, response.CalculatePagination(page, limit, total))
}
