package institute

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
	"gorm.io/gorm"
)

// AdmissionPeriodRequest is used for creating and updating admission periods
type AdmissionPeriodRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	StartDate string `json:"start_date" validate:"required,date"`
	EndDate   string `json:"end_date" validate:"required,date"`
}

// parse validates the dates. The period status always follows the dates.
func (r AdmissionPeriodRequest) parse(p *model.AdmissionPeriod, now time.Time) string {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return "start_date must be YYYY-MM-DD"
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return "end_date must be YYYY-MM-DD"
	}
	if end.Before(start) {
		return "end_date must not be before start_date"
	}

	p.Name = validation.SanitizeString(r.Name)
	p.StartDate = start
	p.EndDate = end
	p.Status = p.StatusAt(now)
	return ""
}

// CreateAdmissionPeriod handles POST /api/institutes/admission-periods
func (h *InstituteHandler) CreateAdmissionPeriod(c *fiber.Ctx) error {
	var req AdmissionPeriodRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		period := model.AdmissionPeriod{InstituteID: institute.ID}
		if msg := req.parse(&period, time.Now()); msg != "" {
			return response.BadRequest(c, msg)
		}

		if err := db.Create(&period).Error; err != nil {
			return response.FromDBError(c, err)
		}
		return response.Created(c, period)
	})
}

// UpdateAdmissionPeriod handles PUT /api/institutes/admission-periods/:periodId
func (h *InstituteHandler) UpdateAdmissionPeriod(c *fiber.Ctx) error {
	periodID, ok := paramID(c, "periodId")
	if !ok {
		return response.BadRequest(c, "Invalid admission period ID")
	}

	var req AdmissionPeriodRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		var period model.AdmissionPeriod
		if err := db.Where("id = ? AND institute_id = ?", periodID, institute.ID).First(&period).Error; err != nil {
			return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Admission period not found"})
		}

		if msg := req.parse(&period, time.Now()); msg != "" {
			return response.BadRequest(c, msg)
		}
		if err := db.Save(&period).Error; err != nil {
			return response.FromDBError(c, err)
		}
		return response.SuccessWithMessage(c, "Admission period updated successfully", period)
	})
}

// DeleteAdmissionPeriod handles DELETE /api/institutes/admission-periods/:periodId.
// Applications made in the period are kept without one.
func (h *InstituteHandler) DeleteAdmissionPeriod(c *fiber.Ctx) error {
	periodID, ok := paramID(c, "periodId")
	if !ok {
		return response.BadRequest(c, "Invalid admission period ID")
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		result := db.Where("id = ? AND institute_id = ?", periodID, institute.ID).Delete(&model.AdmissionPeriod{})
		if result.Error != nil {
			return response.FromDBError(c, result.Error)
		}
		if result.RowsAffected == 0 {
			return response.NotFound(c, "Admission period not found")
		}
		return response.SuccessWithMessage(c, "Admission period deleted successfully", nil)
	})
}
