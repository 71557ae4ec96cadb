package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/services"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
)

const (
	defaultSnapshotRows = 100
	maxSnapshotRows     = 1000
)

// GetDatabaseSnapshot returns row counts and a capped sample of every table.
// Secrets are redacted.
// GET /api/admin/database
func GetDatabaseSnapshot(c *fiber.Ctx, store database.Storage) error {
	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultSnapshotRows)))
	if limit < 0 || limit > maxSnapshotRows {
		limit = defaultSnapshotRows
	}

	snapshot, err := database.TakeSnapshot(c.UserContext(), db, limit)
	if err != nil {
		return response.FromDBError(c, err)
	}

	return response.Success(c, snapshot)
}

// ExportDatabase uploads a snapshot to object storage
// POST /api/admin/database/export
func ExportDatabase(c *fiber.Ctx, exporter *services.ExportService) error {
	if exporter == nil {
		return response.ServiceUnavailable(c, "Object storage is not configured")
	}

	result, err := exporter.Export(c.UserContext())
	if err != nil {
		return response.FromDBError(c, err)
	}

	return response.SuccessWithMessage(c, "Database exported", result)
}
