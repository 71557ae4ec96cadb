package admin

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/middleware"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"gorm.io/gorm"
)

var userSortColumns = map[string]string{
	"created_at": "created_at",
	"name":       "name",
	"email":      "email",
	"role":       "user_type",
}

// ListUsersRequest represents the query parameters for listing users
type ListUsersRequest struct {
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	Role     string `query:"role"`
	Verified string `query:"verified"`
	Search   string `query:"search"`
	Sort     string `query:"sort"`
	SortDir  string `query:"sort_dir"`
}

// VerificationRequest is the body of PUT /api/admin/users/:userId/verification
type VerificationRequest struct {
	IsVerified *bool `json:"is_verified"`
}

// ListUsers retrieves all users with pagination and filters
// GET /api/admin/users
func ListUsers(c *fiber.Ctx, store database.Storage) error {
	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	var req ListUsersRequest
	if err := c.QueryParser(&req); err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	sortColumn, ok := userSortColumns[req.Sort]
	if !ok {
		sortColumn = "created_at"
	}
	if req.SortDir != "asc" {
		req.SortDir = "desc"
	}

	query := db.WithContext(c.UserContext()).Model(&model.User{})

	if req.Role != "" {
		query = query.Where("user_type = ?", req.Role)
	}
	switch req.Verified {
	case "true":
		query = query.Where("is_verified = ?", true)
	case "false":
		query = query.Where("is_verified = ?", false)
	}
	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.FromDBError(c, err)
	}

	var users []model.User
	if err := query.
		Offset((req.Page - 1) * req.Limit).
		Limit(req.Limit).
		Order(sortColumn + " " + req.SortDir).
		Find(&users).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.Paginated(c, users, response.CalculatePagination(req.Page, req.Limit, total))
}

// UpdateUserVerification sets the verified flag of a user
// PUT /api/admin/users/:userId/verification
func UpdateUserVerification(c *fiber.Ctx, store database.Storage) error {
	userID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil || userID == 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req VerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.IsVerified == nil {
		return response.BadRequest(c, "is_verified is required")
	}

	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}
	db = db.WithContext(c.UserContext())

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{NotFoundMessage: "User not found"})
	}

	updates := map[string]interface{}{"is_verified": *req.IsVerified}
	if !*req.IsVerified {
		// unverifying also signs the user out everywhere
		updates["token_version"] = gorm.Expr("token_version + ?", 1)
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return response.FromDBError(c, err)
	}
	if err := db.First(&user, userID).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.SuccessWithMessage(c, "User verification updated", user)
}

// DeleteUser removes a user and, through the foreign keys, its profile and
// applications
// DELETE /api/admin/users/:userId
func DeleteUser(c *fiber.Ctx, store database.Storage) error {
	userID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil || userID == 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	if adminID, ok := middleware.GetUserID(c); ok && uint(userID) == adminID {
		return response.BadRequest(c, "You cannot delete your own account")
	}

	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	result := db.WithContext(c.UserContext()).Delete(&model.User{}, userID)
	if result.Error != nil {
		return response.FromDBError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "User not found")
	}

	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}
