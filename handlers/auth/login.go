package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/model"
	authutil "github.com/sahilchouksey/career-guidance-api/utils/auth"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
	"gorm.io/gorm"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	ctx := c.UserContext()
	ip := c.IP()
	email := validation.NormalizeEmail(req.Email)

	// Find user by email
	var user model.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return response.FromDBError(c, err)
		}
		authutil.SpendVerifyTime(req.Password)
		h.bruteForceProtection.RecordFailedAttempt(ctx, ip, email)
		return response.Unauthorized(c, "Invalid email or password")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		h.bruteForceProtection.RecordFailedAttempt(ctx, ip, email)
		return response.Unauthorized(c, "Invalid email or password")
	}

	if !user.IsVerified {
		return response.Forbidden(c, "Account has not been verified")
	}

	h.bruteForceProtection.RecordSuccessfulAttempt(ctx, ip)

	if authutil.NeedsRehash(user.PasswordHash) {
		if hash, err := authutil.HashPassword(req.Password); err == nil {
			if err := db.WithContext(ctx).Model(&user).Update("password", hash).Error; err != nil {
				log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to upgrade password hash")
			}
		}
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Success(c, AuthResponse{User: &user, TokenPair: *tokens})
}
