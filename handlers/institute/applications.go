package institute

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/services"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
	"gorm.io/gorm"
)

// ReviewRequest is the body of an application status change
type ReviewRequest struct {
	Status      string `json:"status" validate:"required,oneof=under_review accepted rejected"`
	ReviewNotes string `json:"review_notes" validate:"omitempty,max=5000"`
}

// ListApplications handles GET /api/institutes/applications
func (h *InstituteHandler) ListApplications(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		query := db.Model(&model.Application{}).Where("institute_id = ?", institute.ID)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if courseID := c.QueryInt("course_id"); courseID > 0 {
			query = query.Where("course_id = ?", courseID)
		}
		if periodID := c.QueryInt("admission_period_id"); periodID > 0 {
			query = query.Where("admission_period_id = ?", periodID)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return response.FromDBError(c, err)
		}

		var applications []model.Application
		if err := query.
			Preload("Student.User").
			Preload("Course").
			Preload("AdmissionPeriod").
			Order("application_date DESC").
			Limit(limit).
			Offset((page - 1) * limit).
			Find(&applications).Error; err != nil {
			return response.FromDBError(c, err)
		}

		return response.Paginated(c, applications, response.CalculatePagination(page, limit, total))
	})
}

// UpdateApplicationStatus handles PUT /api/institutes/applications/:applicationId/status
func (h *InstituteHandler) UpdateApplicationStatus(c *fiber.Ctx) error {
	applicationID, ok := paramID(c, "applicationId")
	if !ok {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	return h.withInstitute(c, func(_ *gorm.DB, institute *model.Institute) error {
		application, err := h.applications.Review(c.UserContext(), institute.ID, applicationID,
			req.Status, validation.CleanText(req.ReviewNotes, 5000))
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.BadRequest(c, "A withdrawn application cannot be reviewed")
		case err != nil:
			return response.FromDBError(c, err)
		}
		return response.SuccessWithMessage(c, "Application status updated", application)
	})
}
