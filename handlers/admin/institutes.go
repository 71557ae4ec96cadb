package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/handlers/institute"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/auth"
	"github.com/sahilchouksey/career-guidance-api/utils/cache"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
	"gorm.io/gorm"
)

var validator = validation.NewValidator()

// CreateInstituteRequest creates an institute account and its profile
type CreateInstituteRequest struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	Name            string `json:"name" validate:"required,min=2,max=255"`
	Description     string `json:"description" validate:"omitempty,max=5000"`
	Location        string `json:"location" validate:"omitempty,max=255"`
	ContactEmail    string `json:"contact_email" validate:"omitempty,email,max=255"`
	ContactPhone    string `json:"contact_phone" validate:"omitempty,phone,max=20"`
	Website         string `json:"website" validate:"omitempty,url,max=255"`
	EstablishedYear *int   `json:"established_year" validate:"omitempty,gte=1000,lte=2100"`
	Accreditation   string `json:"accreditation" validate:"omitempty,max=255"`
}

// CreateInstitute creates a verified institute user and its profile
// POST /api/admin/institutes
func CreateInstitute(c *fiber.Ctx, store database.Storage, redisCache *cache.RedisCache) error {
	var req CreateInstituteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	name := validation.SanitizeString(req.Name)
	user := model.User{
		Name:         name,
		Email:        validation.NormalizeEmail(req.Email),
		PasswordHash: hashedPassword,
		Role:         model.RoleInstitute,
		IsVerified:   true,
	}
	inst := model.Institute{
		Name:            name,
		Description:     validation.CleanText(req.Description, 5000),
		Location:        validation.SanitizeString(req.Location),
		ContactEmail:    validation.NormalizeEmail(req.ContactEmail),
		ContactPhone:    validation.SanitizeString(req.ContactPhone),
		Website:         validation.SanitizeString(req.Website),
		EstablishedYear: req.EstablishedYear,
		Accreditation:   validation.SanitizeString(req.Accreditation),
	}
	if inst.ContactEmail == "" {
		inst.ContactEmail = user.Email
	}

	err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		inst.UserID = user.ID
		return tx.Create(&inst).Error
	})
	if err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{
			DuplicateMessage: "User with this email already exists",
		})
	}

	institute.InvalidateListCache(c.UserContext(), redisCache)
	log.Info().Uint("institute_id", inst.ID).Msg("institute created by admin")
	return response.Created(c, inst)
}

// DeleteInstitute removes an institute together with its owner account.
// Faculties, courses, admission periods and applications cascade.
// DELETE /api/admin/institutes/:id
func DeleteInstitute(c *fiber.Ctx, store database.Storage, redisCache *cache.RedisCache) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid institute ID")
	}

	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	var inst model.Institute
	err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inst, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Institute{}, inst.ID).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_type = ?", inst.UserID, model.RoleInstitute).Delete(&model.User{}).Error
	})
	if err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "Institute not found"})
	}

	institute.InvalidateListCache(c.UserContext(), redisCache)
	log.Info().Uint("institute_id", inst.ID).Msg("institute deleted by admin")
	return response.SuccessWithMessage(c, "Institute deleted successfully", nil)
}
