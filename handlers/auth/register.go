package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/model"
	authutil "github.com/sahilchouksey/career-guidance-api/utils/auth"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
	"gorm.io/gorm"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=255"`
	Email         string `json:"email" validate:"required,email,max=255"`
	Password      string `json:"password" validate:"required,min=6,max=72"`
	Role          string `json:"role" validate:"omitempty,oneof=student institute"`
	InstituteName string `json:"institute_name" validate:"omitempty,max=255"`
}

// Register handles POST /api/auth/register. The student or institute
// profile is created together with the user.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Role == model.RoleAdmin {
		return response.BadRequest(c, "Admin accounts cannot be self-registered")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.Role == "" {
		req.Role = model.RoleStudent
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Email = validation.NormalizeEmail(req.Email)

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         req.Role,
		IsVerified:   true,
	}

	err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		switch user.Role {
		case model.RoleInstitute:
			name := validation.SanitizeString(req.InstituteName)
			if name == "" {
				name = user.Name
			}
			user.Institute = &model.Institute{UserID: user.ID, Name: name, ContactEmail: user.Email}
			return tx.Create(user.Institute).Error
		default:
			user.Student = &model.Student{UserID: user.ID}
			return tx.Create(user.Student).Error
		}
	})
	if err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{
			DuplicateMessage: "User with this email already exists",
		})
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	log.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return response.Created(c, AuthResponse{User: &user, TokenPair: *tokens})
}
