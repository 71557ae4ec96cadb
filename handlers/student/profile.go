package student

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/middleware"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
	"gorm.io/datatypes"
)

// StudentHandler handles the student profile
type StudentHandler struct {
	store     database.Storage
	validator *validation.Validator
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(store database.Storage) *StudentHandler {
	return &StudentHandler{
		store:     store,
		validator: validation.NewValidator(),
	}
}

// UpdateProfileRequest represents the request body for updating a student profile
type UpdateProfileRequest struct {
	DateOfBirth    *string         `json:"date_of_birth" validate:"omitempty,date"`
	Phone          *string         `json:"phone" validate:"omitempty,phone,max=20"`
	Address        *string         `json:"address" validate:"omitempty,max=1000"`
	HighSchool     *string         `json:"high_school" validate:"omitempty,max=255"`
	GraduationYear *int            `json:"graduation_year" validate:"omitempty,gte=1900,lte=2100"`
	Grades         json.RawMessage `json:"grades"`
}

// GetProfile handles GET /api/students/profile
func (h *StudentHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	var student model.Student
	if err := db.WithContext(c.UserContext()).
		Preload("User").
		Where("user_id = ?", userID).
		First(&student).Error; err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Student profile not found"})
	}

	return response.Success(c, student)
}

// UpdateProfile handles PUT /api/students/profile
func (h *StudentHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	updates := map[string]interface{}{}
	if req.DateOfBirth != nil {
		dob, err := time.ParseInLocation("2006-01-02", *req.DateOfBirth, time.UTC)
		if err != nil {
			return response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
		}
		updates["date_of_birth"] = dob
	}
	if req.Phone != nil {
		updates["phone"] = validation.SanitizeString(*req.Phone)
	}
	if req.Address != nil {
		updates["address"] = validation.CleanText(*req.Address, 1000)
	}
	if req.HighSchool != nil {
		updates["high_school"] = validation.SanitizeString(*req.HighSchool)
	}
	if req.GraduationYear != nil {
		updates["graduation_year"] = *req.GraduationYear
	}
	if len(req.Grades) > 0 && string(req.Grades) != "null" {
		if !json.Valid(req.Grades) {
			return response.BadRequest(c, "grades must be valid JSON")
		}
		updates["grades"] = datatypes.JSON(req.Grades)
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}
	db = db.WithContext(c.UserContext())

	var student model.Student
	if err := db.Where("user_id = ?", userID).First(&student).Error; err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Student profile not found"})
	}
	if err := db.Model(&student).Updates(updates).Error; err != nil {
		return response.FromDBError(c, err)
	}
	if err := db.First(&student, student.ID).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.SuccessWithMessage(c, "Profile updated successfully", student)
}
