package application

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/services"
	"github.com/sahilchouksey/career-guidance-api/services/storage"
	"github.com/sahilchouksey/career-guidance-api/utils/middleware"
	"github.com/sahilchouksey/career-guidance-api/utils/pdfvalidation"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
	"gorm.io/gorm"
)

const documentURLExpiry = time.Hour

// ApplicationHandler handles a student's applications
type ApplicationHandler struct {
	store     database.Storage
	service   *services.ApplicationService
	objects   storage.ObjectStore
	validator *validation.Validator
}

// NewApplicationHandler creates a new application handler. objects may be
// nil, in which case document uploads answer 503.
func NewApplicationHandler(store database.Storage, objects storage.ObjectStore) *ApplicationHandler {
	return &ApplicationHandler{
		store:     store,
		service:   services.NewApplicationService(store),
		objects:   objects,
		validator: validation.NewValidator(),
	}
}

// ApplyRequest represents the request body of POST /api/applications/apply
type ApplyRequest struct {
	CourseID          uint   `json:"course_id" validate:"required"`
	AdmissionPeriodID *uint  `json:"admission_period_id" validate:"omitempty,gt=0"`
	PreferredMajor    string `json:"preferred_major" validate:"omitempty,max=255"`
	PersonalStatement string `json:"personal_statement" validate:"omitempty,max=10000"`
}

// currentStudent resolves the caller's student profile id
func (h *ApplicationHandler) currentStudent(c *fiber.Ctx) (uint, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}

	db, err := h.store.Conn()
	if err != nil {
		return 0, err
	}

	var student model.Student
	if err := db.WithContext(c.UserContext()).Select("id").Where("user_id = ?", userID).First(&student).Error; err != nil {
		return 0, err
	}
	return student.ID, nil
}

// Apply handles POST /api/applications/apply
func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	studentID, err := h.currentStudent(c)
	if err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Student profile not found"})
	}

	application, err := h.service.Apply(c.UserContext(), services.ApplyInput{
		StudentID:         studentID,
		CourseID:          req.CourseID,
		AdmissionPeriodID: req.AdmissionPeriodID,
		PreferredMajor:    validation.SanitizeString(req.PreferredMajor),
		PersonalStatement: validation.CleanText(req.PersonalStatement, 10000),
	})
	if err != nil {
		return applyError(c, err)
	}

	log.Info().Uint("application_id", application.ID).Uint("student_id", studentID).Msg("application submitted")
	return response.Created(c, application)
}

func applyError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrCourseNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrAdmissionPeriodNotFound):
		return response.NotFound(c, "Admission period not found for this institute")
	case errors.Is(err, services.ErrDuplicateApplication):
		return response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrApplicationNotFound):
		return response.NotFound(c, "Application not found")
	case errors.Is(err, services.ErrInvalidTransition):
		return response.BadRequest(c, "Application can no longer be changed")
	}
	return response.FromDBError(c, err)
}

// MyApplications handles GET /api/applications/my
func (h *ApplicationHandler) MyApplications(c *fiber.Ctx) error {
	studentID, err := h.currentStudent(c)
	if err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Student profile not found"})
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	query := db.WithContext(c.UserContext()).Where("student_id = ?", studentID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var applications []model.Application
	if err := query.
		Preload("Course").
		Preload("Institute").
		Preload("AdmissionPeriod").
		Order("application_date DESC").
		Find(&applications).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.Success(c, applications)
}

func applicationID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	return uint(id), err == nil && id > 0
}

// GetApplication handles GET /api/applications/:id
func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	id, ok := applicationID(c)
	if !ok {
		return response.BadRequest(c, "Invalid application ID")
	}

	studentID, err := h.currentStudent(c)
	if err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Student profile not found"})
	}

	application, err := h.service.ForStudent(c.UserContext(), studentID, id)
	if err != nil {
		return applyError(c, err)
	}
	return response.Success(c, application)
}

// Withdraw handles PUT /api/applications/:id/withdraw
func (h *ApplicationHandler) Withdraw(c *fiber.Ctx) error {
	id, ok := applicationID(c)
	if !ok {
		return response.BadRequest(c, "Invalid application ID")
	}

	studentID, err := h.currentStudent(c)
	if err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Student profile not found"})
	}

	application, err := h.service.Withdraw(c.UserContext(), studentID, id)
	if err != nil {
		return applyError(c, err)
	}
	return response.SuccessWithMessage(c, "Application withdrawn", application)
}

// DeleteApplication handles DELETE /api/applications/:id
func (h *ApplicationHandler) DeleteApplication(c *fiber.Ctx) error {
	id, ok := applicationID(c)
	if !ok {
		return response.BadRequest(c, "Invalid application ID")
	}

	studentID, err := h.currentStudent(c)
	if err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Student profile not found"})
	}

	if err := h.service.Delete(c.UserContext(), studentID, id); err != nil {
		return applyError(c, err)
	}
	return response.SuccessWithMessage(c, "Application deleted", nil)
}

// UploadDocument handles POST /api/applications/:id/documents with a
// multipart "file" field holding a PDF.
func (h *ApplicationHandler) UploadDocument(c *fiber.Ctx) error {
	if h.objects == nil {
		return response.ServiceUnavailable(c, "Document storage is not configured")
	}

	id, ok := applicationID(c)
	if !ok {
		return response.BadRequest(c, "Invalid application ID")
	}

	studentID, err := h.currentStudent(c)
	if err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Student profile not found"})
	}

	ctx := c.UserContext()
	application, err := h.service.ForStudent(ctx, studentID, id)
	if err != nil {
		return applyError(c, err)
	}
	if !application.CanWithdraw() {
		return response.BadRequest(c, "Documents can only be added while the application is open")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A PDF file is required in the 'file' field")
	}

	result, content, err := pdfvalidation.ReadUpload(file, pdfvalidation.ApplicationDocument)
	if err != nil {
		var rejected *pdfvalidation.RejectedError
		if errors.As(err, &rejected) {
			return response.BadRequest(c, rejected.Reason)
		}
		return response.InternalServerError(c, "Failed to read uploaded file")
	}

	now := time.Now().UTC()
	key := storage.GenerateKey(fmt.Sprintf("applications/%d", application.ID), file.Filename, now)
	if err := h.objects.UploadBytes(ctx, key, content, "application/pdf"); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload application document")
		return response.InternalServerError(c, "Failed to store document")
	}

	doc := model.ApplicationDocument{
		Name:       file.Filename,
		Key:        key,
		Size:       result.Size,
		Pages:      result.Pages,
		UploadedAt: now,
	}
	if err := h.service.AttachDocument(ctx, application, doc); err != nil {
		if delErr := h.objects.DeleteFile(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned document")
		}
		return response.FromDBError(c, err)
	}

	if url, err := h.objects.PresignedURL(key, documentURLExpiry); err == nil {
		doc.URL = url
	}
	return response.Created(c, doc)
}
