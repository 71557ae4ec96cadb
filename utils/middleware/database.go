package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
)

// RequireDatabase short-circuits with 503 while the store is degraded.
func RequireDatabase(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !store.Ready() {
			return response.ServiceUnavailable(c, "Database is not available")
		}
		return c.Next()
	}
}
