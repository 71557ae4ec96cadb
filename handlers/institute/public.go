package institute

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/cache"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"gorm.io/gorm"
)

type cachedList struct {
	Institutes []model.Institute       `json:"institutes"`
	Pagination response.PaginationMeta `json:"pagination"`
}

// ListInstitutes handles GET /api/institutes
func (h *InstituteHandler) ListInstitutes(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	search := strings.TrimSpace(c.Query("search"))
	location := strings.TrimSpace(c.Query("location"))

	ctx := c.UserContext()
	var cacheKey string
	if h.cache != nil {
		if version, err := h.cache.Version(ctx, listCacheVersionKey); err == nil {
			cacheKey = cache.Key("institutes", "list", fmt.Sprintf("v%d", version), strconv.Itoa(page), strconv.Itoa(limit),
				strings.ToLower(search), strings.ToLower(location))

			var cached cachedList
			if err := h.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
				c.Set("X-Cache", "HIT")
				return response.Paginated(c, cached.Institutes, cached.Pagination)
			}
		}
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	query := db.WithContext(ctx).Model(&model.Institute{})
	if search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}
	if location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.FromDBError(c, err)
	}

	var institutes []model.Institute
	if err := query.Order("name ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&institutes).Error; err != nil {
		return response.FromDBError(c, err)
	}

	pagination := response.CalculatePagination(page, limit, total)

	if cacheKey != "" {
		if err := h.cache.SetJSON(ctx, cacheKey, cachedList{Institutes: institutes, Pagination: pagination}, listCacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache institute list")
		}
	}

	return response.Paginated(c, institutes, pagination)
}

// GetInstitute handles GET /api/institutes/:id
func (h *InstituteHandler) GetInstitute(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid institute ID")
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	var institute model.Institute
	if err := db.WithContext(c.UserContext()).
		Preload("Faculties", func(tx *gorm.DB) *gorm.DB { return tx.Order("name ASC") }).
		Preload("Faculties.Courses", func(tx *gorm.DB) *gorm.DB { return tx.Order("code ASC") }).
		Preload("AdmissionPeriods", func(tx *gorm.DB) *gorm.DB { return tx.Order("start_date DESC") }).
		First(&institute, id).Error; err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Institute not found"})
	}

	return response.Success(c, institute)
}

// ListFaculties handles GET /api/institutes/:id/faculties
func (h *InstituteHandler) ListFaculties(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid institute ID")
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	if ok, err := h.ensureInstitute(c, db, id); !ok {
		return err
	}

	var faculties []model.Faculty
	if err := db.WithContext(c.UserContext()).
		Where("institute_id = ?", id).
		Order("name ASC").
		Find(&faculties).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.Success(c, faculties)
}

// ListCourses handles GET /api/institutes/:id/courses
func (h *InstituteHandler) ListCourses(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid institute ID")
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	if ok, err := h.ensureInstitute(c, db, id); !ok {
		return err
	}

	query := db.WithContext(c.UserContext()).
		Joins("JOIN faculties ON faculties.id = courses.faculty_id").
		Where("faculties.institute_id = ?", id).
		Preload("Faculty")
	if c.Query("active") == "true" {
		query = query.Where("courses.is_active = ?", true)
	}

	var courses []model.Course
	if err := query.Order("courses.code ASC").Find(&courses).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.Success(c, courses)
}

// ListAdmissionPeriods handles GET /api/institutes/:id/admission-periods
func (h *InstituteHandler) ListAdmissionPeriods(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid institute ID")
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	if ok, err := h.ensureInstitute(c, db, id); !ok {
		return err
	}

	query := db.WithContext(c.UserContext()).Where("institute_id = ?", id)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var periods []model.AdmissionPeriod
	if err := query.Order("start_date DESC").Find(&periods).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.Success(c, periods)
}

// GetCourse handles GET /api/institutes/courses/:courseId
func (h *InstituteHandler) GetCourse(c *fiber.Ctx) error {
	id, ok := paramID(c, "courseId")
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	var course model.Course
	if err := db.WithContext(c.UserContext()).
		Preload("Faculty.Institute").
		First(&course, id).Error; err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Course not found"})
	}

	return response.Success(c, course)
}

// ensureInstitute writes a 404 and returns false when the institute does not exist
func (h *InstituteHandler) ensureInstitute(c *fiber.Ctx, db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.WithContext(c.UserContext()).Model(&model.Institute{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, response.FromDBError(c, err)
	}
	if count == 0 {
		return false, response.NotFound(c, "Institute not found")
	}
	return true, nil
}
