package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/model"
	authutil "github.com/sahilchouksey/career-guidance-api/utils/auth"
	"github.com/sahilchouksey/career-guidance-api/utils/middleware"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshToken handles POST /api/auth/refresh. The old refresh token is
// revoked and a new pair is issued.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	claims, err := h.jwtManager.ValidateTokenOfType(req.RefreshToken, authutil.TokenTypeRefresh)
	if errors.Is(err, authutil.ErrWrongTokenType) {
		return response.Unauthorized(c, "Invalid token type")
	}
	if err != nil {
		return response.Unauthorized(c, "Invalid or expired refresh token")
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}
	ctx := c.UserContext()

	isRevoked, err := h.blacklistService.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	// Load user to get current token version
	var user model.User
	if err := db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		return response.Unauthorized(c, "User not found")
	}
	if user.TokenVersion != claims.TokenVersion {
		return response.Unauthorized(c, "Token has been invalidated")
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	if err := h.blacklistService.RevokeToken(ctx, claims.ID, user.ID, claims.Expiry(), authutil.ReasonRefresh); err != nil {
		// the old token still expires on its own
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to revoke refresh token")
	}

	return response.Success(c, tokens)
}

// Logout handles POST /api/auth/logout by revoking the current access token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	if err := h.blacklistService.RevokeToken(c.UserContext(), claims.ID, claims.UserID, claims.Expiry(), authutil.ReasonLogout); err != nil {
		return response.FromDBError(c, err)
	}

	return response.SuccessWithMessage(c, "Successfully logged out", nil)
}
