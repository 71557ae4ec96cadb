package institute

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UpdateInstituteRequest represents the request body for updating the caller's institute
type UpdateInstituteRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=255"`
	Description     *string `json:"description" validate:"omitempty,max=5000"`
	Location        *string `json:"location" validate:"omitempty,max=255"`
	ContactEmail    *string `json:"contact_email" validate:"omitempty,email,max=255"`
	ContactPhone    *string `json:"contact_phone" validate:"omitempty,phone,max=20"`
	Website         *string `json:"website" validate:"omitempty,url,max=255"`
	EstablishedYear *int    `json:"established_year" validate:"omitempty,gte=1000,lte=2100"`
	Accreditation   *string `json:"accreditation" validate:"omitempty,max=255"`
	TotalStudents   *int    `json:"total_students" validate:"omitempty,gte=0"`
	LogoURL         *string `json:"logo_url" validate:"omitempty,url,max=500"`
	Address         *string `json:"address" validate:"omitempty,max=1000"`
}

// FacultyRequest is used for creating and updating faculties
type FacultyRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=255"`
	Description     string `json:"description" validate:"omitempty,max=5000"`
	DeanName        string `json:"dean_name" validate:"omitempty,max=255"`
	ContactEmail    string `json:"contact_email" validate:"omitempty,email,max=255"`
	ContactPhone    string `json:"contact_phone" validate:"omitempty,phone,max=20"`
	EstablishedYear *int   `json:"established_year" validate:"omitempty,gte=1000,lte=2100"`
}

// CourseRequest is used for creating and updating courses
type CourseRequest struct {
	Name                string          `json:"name" validate:"required,min=2,max=255"`
	Code                string          `json:"code" validate:"required,min=2,max=50"`
	Description         string          `json:"description" validate:"omitempty,max=5000"`
	Duration            int             `json:"duration" validate:"gte=0,lte=20"`
	DurationUnit        string          `json:"duration_unit" validate:"omitempty,oneof=years semesters months"`
	Requirements        json.RawMessage `json:"requirements"`
	Fees                json.RawMessage `json:"fees"`
	IntakeCapacity      int             `json:"intake_capacity" validate:"gte=0"`
	ApplicationDeadline string          `json:"application_deadline" validate:"omitempty,date"`
	IsActive            *bool           `json:"is_active"`
}

// GetMyInstitute handles GET /api/institutes/me
func (h *InstituteHandler) GetMyInstitute(c *fiber.Ctx) error {
	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		if err := db.Preload("Faculties.Courses").Preload("AdmissionPeriods").First(institute, institute.ID).Error; err != nil {
			return response.FromDBError(c, err)
		}
		return response.Success(c, institute)
	})
}

// UpdateMyInstitute handles PUT /api/institutes/me
func (h *InstituteHandler) UpdateMyInstitute(c *fiber.Ctx) error {
	var req UpdateInstituteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = validation.SanitizeString(*req.Name)
		}
		if req.Description != nil {
			updates["description"] = validation.CleanText(*req.Description, 5000)
		}
		if req.Location != nil {
			updates["location"] = validation.SanitizeString(*req.Location)
		}
		if req.ContactEmail != nil {
			updates["contact_email"] = validation.NormalizeEmail(*req.ContactEmail)
		}
		if req.ContactPhone != nil {
			updates["contact_phone"] = validation.SanitizeString(*req.ContactPhone)
		}
		if req.Website != nil {
			updates["website"] = validation.SanitizeString(*req.Website)
		}
		if req.EstablishedYear != nil {
			updates["established_year"] = *req.EstablishedYear
		}
		if req.Accreditation != nil {
			updates["accreditation"] = validation.SanitizeString(*req.Accreditation)
		}
		if req.TotalStudents != nil {
			updates["total_students"] = *req.TotalStudents
		}
		if req.LogoURL != nil {
			updates["logo_url"] = validation.SanitizeString(*req.LogoURL)
		}
		if req.Address != nil {
			updates["address"] = validation.CleanText(*req.Address, 1000)
		}
		if len(updates) == 0 {
			return response.BadRequest(c, "No fields to update")
		}

		if err := db.Model(institute).Updates(updates).Error; err != nil {
			return response.FromDBError(c, err)
		}
		if err := db.First(institute, institute.ID).Error; err != nil {
			return response.FromDBError(c, err)
		}

		InvalidateListCache(c.UserContext(), h.cache)
		return response.SuccessWithMessage(c, "Institute updated successfully", institute)
	})
}

// CreateFaculty handles POST /api/institutes/faculties
func (h *InstituteHandler) CreateFaculty(c *fiber.Ctx) error {
	var req FacultyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		faculty := model.Faculty{InstituteID: institute.ID}
		req.apply(&faculty)

		if err := db.Create(&faculty).Error; err != nil {
			return response.FromDBError(c, err)
		}
		return response.Created(c, faculty)
	})
}

// UpdateFaculty handles PUT /api/institutes/faculties/:facultyId
func (h *InstituteHandler) UpdateFaculty(c *fiber.Ctx) error {
	facultyID, ok := paramID(c, "facultyId")
	if !ok {
		return response.BadRequest(c, "Invalid faculty ID")
	}

	var req FacultyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		var faculty model.Faculty
		if err := db.Where("id = ? AND institute_id = ?", facultyID, institute.ID).First(&faculty).Error; err != nil {
			return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Faculty not found"})
		}

		req.apply(&faculty)
		if err := db.Save(&faculty).Error; err != nil {
			return response.FromDBError(c, err)
		}
		return response.SuccessWithMessage(c, "Faculty updated successfully", faculty)
	})
}

// DeleteFaculty handles DELETE /api/institutes/faculties/:facultyId.
// Courses and their applications go with it.
func (h *InstituteHandler) DeleteFaculty(c *fiber.Ctx) error {
	facultyID, ok := paramID(c, "facultyId")
	if !ok {
		return response.BadRequest(c, "Invalid faculty ID")
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		result := db.Where("id = ? AND institute_id = ?", facultyID, institute.ID).Delete(&model.Faculty{})
		if result.Error != nil {
			return response.FromDBError(c, result.Error)
		}
		if result.RowsAffected == 0 {
			return response.NotFound(c, "Faculty not found")
		}
		return response.SuccessWithMessage(c, "Faculty deleted successfully", nil)
	})
}

func (r FacultyRequest) apply(f *model.Faculty) {
	f.Name = validation.SanitizeString(r.Name)
	f.Description = validation.CleanText(r.Description, 5000)
	f.DeanName = validation.SanitizeString(r.DeanName)
	f.ContactEmail = validation.NormalizeEmail(r.ContactEmail)
	f.ContactPhone = validation.SanitizeString(r.ContactPhone)
	f.EstablishedYear = r.EstablishedYear
}

// CreateCourse handles POST /api/institutes/faculties/:facultyId/courses
func (h *InstituteHandler) CreateCourse(c *fiber.Ctx) error {
	facultyID, ok := paramID(c, "facultyId")
	if !ok {
		return response.BadRequest(c, "Invalid faculty ID")
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		var faculty model.Faculty
		if err := db.Where("id = ? AND institute_id = ?", facultyID, institute.ID).First(&faculty).Error; err != nil {
			return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Faculty not found"})
		}

		course := model.Course{FacultyID: faculty.ID, IsActive: true}
		if err := req.apply(&course); err != nil {
			return response.BadRequest(c, err.Error())
		}

		if err := db.Create(&course).Error; err != nil {
			return response.FromDBError(c, err, response.DBErrorOptions{
				DuplicateMessage: "Course with this code already exists",
			})
		}
		return response.Created(c, course)
	})
}

// UpdateCourse handles PUT /api/institutes/courses/:courseId
func (h *InstituteHandler) UpdateCourse(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		course, err := ownedCourse(db, institute.ID, courseID)
		if err != nil {
			return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Course not found"})
		}

		if err := req.apply(course); err != nil {
			return response.BadRequest(c, err.Error())
		}
		if err := db.Save(course).Error; err != nil {
			return response.FromDBError(c, err, response.DBErrorOptions{
				DuplicateMessage: "Course with this code already exists",
			})
		}
		return response.SuccessWithMessage(c, "Course updated successfully", course)
	})
}

// DeleteCourse handles DELETE /api/institutes/courses/:courseId
func (h *InstituteHandler) DeleteCourse(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	return h.withInstitute(c, func(db *gorm.DB, institute *model.Institute) error {
		course, err := ownedCourse(db, institute.ID, courseID)
		if err != nil {
			return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Course not found"})
		}

		if err := db.Delete(&model.Course{}, course.ID).Error; err != nil {
			return response.FromDBError(c, err)
		}
		return response.SuccessWithMessage(c, "Course deleted successfully", nil)
	})
}

func ownedCourse(db *gorm.DB, instituteID, courseID uint) (*model.Course, error) {
	var course model.Course
	err := db.Joins("JOIN faculties ON faculties.id = courses.faculty_id").
		Where("courses.id = ? AND faculties.institute_id = ?", courseID, instituteID).
		First(&course).Error
	return &course, err
}

func (r CourseRequest) apply(course *model.Course) error {
	course.Name = validation.SanitizeString(r.Name)
	course.Code = validation.SanitizeString(r.Code)
	course.Description = validation.CleanText(r.Description, 5000)
	course.Duration = r.Duration
	course.DurationUnit = r.DurationUnit
	if course.DurationUnit == "" {
		course.DurationUnit = model.DurationYears
	}
	course.IntakeCapacity = r.IntakeCapacity
	if r.IsActive != nil {
		course.IsActive = *r.IsActive
	}

	for _, doc := range []struct {
		name string
		raw  json.RawMessage
		dst  *datatypes.JSON
	}{
		{"requirements", r.Requirements, &course.Requirements},
		{"fees", r.Fees, &course.Fees},
	} {
		if len(doc.raw) == 0 || string(doc.raw) == "null" {
			continue
		}
		if !json.Valid(doc.raw) {
			return errors.New(doc.name + " must be valid JSON")
		}
		*doc.dst = datatypes.JSON(doc.raw)
	}

	if r.ApplicationDeadline != "" {
		deadline, err := parseDate(r.ApplicationDeadline)
		if err != nil {
			return errors.New("application_deadline must be YYYY-MM-DD")
		}
		course.ApplicationDeadline = &deadline
	}
	return nil
}
