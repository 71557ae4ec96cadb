package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
)

// ListAuditLogs retrieves admin audit logs with pagination
// GET /api/admin/audit-logs
func ListAuditLogs(c *fiber.Ctx, store database.Storage) error {
	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := db.WithContext(c.UserContext()).Model(&model.AdminAuditLog{})

	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if adminIDStr := c.Query("admin_id"); adminIDStr != "" {
		if adminID, err := strconv.ParseUint(adminIDStr, 10, 32); err == nil {
			query = query.Where("admin_id = ?", adminID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.FromDBError(c, err)
	}

	var logs []model.AdminAuditLog
	if err := query.Offset((page - 1) * limit).Limit(limit).Order("created_at DESC").Find(&logs).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.Paginated(c, logs, response.CalculatePagination(page, limit, total))
}
