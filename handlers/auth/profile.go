package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/middleware"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
)

// Me handles GET /api/auth/me and returns the user with its profile
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	var user model.User
	query := db.WithContext(c.UserContext())
	switch role, _ := middleware.GetUserRole(c); role {
	case model.RoleStudent:
		query = query.Preload("Student")
	case model.RoleInstitute:
		query = query.Preload("Institute")
	}

	if err := query.First(&user, userID).Error; err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "User not found"})
	}

	return response.Success(c, user)
}
