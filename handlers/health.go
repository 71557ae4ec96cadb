package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
)

// Ping is the liveness probe. It never touches the database.
func Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HealthCheck reports database connectivity, schema completeness and pool
// statistics. It answers 503 while the store is degraded.
func HealthCheck(c *fiber.Ctx, store database.Storage) error {
	body := fiber.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	if err := store.HealthCheck(ctx); err != nil {
		body["status"] = "DEGRADED"
		body["database"] = "disconnected"
		body["error"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}

	db, err := store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	tables := database.CheckTables(ctx, db)
	body["database"] = "connected"
	body["tables"] = tables
	body["pool"] = store.PoolStats()
	if !tables.Complete() {
		body["status"] = "DEGRADED"
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}

	return c.JSON(body)
}

// Root is the API banner
func Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    "Career Guidance Platform API",
		"status":  "running",
		"health":  "/api/health",
		"routes":  "/api/test",
		"version": "1.0.0",
	})
}

// Routes lists the registered routes as "METHOD /path"
func Routes(app *fiber.App) []string {
	seen := map[string]bool{}
	var routes []string
	for _, r := range app.GetRoutes(true) {
		if r.Method == fiber.MethodHead || r.Method == fiber.MethodOptions {
			continue
		}
		entry := r.Method + " " + r.Path
		if !seen[entry] {
			seen[entry] = true
			routes = append(routes, entry)
		}
	}
	sort.Strings(routes)
	return routes
}

// TestRoutes handles GET /api/test
func TestRoutes(app *fiber.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return response.SuccessWithMessage(c, "API is working", fiber.Map{
			"routes": Routes(app),
		})
	}
}

// NotFound is the fallback for unknown paths
func NotFound(app *fiber.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    "ROUTE_NOT_FOUND",
				"message": "Route " + c.Method() + " " + c.Path() + " not found",
			},
			"available_routes": Routes(app),
		})
	}
}
