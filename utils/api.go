package utils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
)

// MakeHTTPHandleFunc binds a store-taking handler to a fiber route. An error
// that escapes the handler is logged and rendered as a 500 envelope.
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := handler(c, store); err != nil {
			log.Error().Err(err).Str("path", c.Path()).Msg("handler failed")
			return response.InternalServerError(c, "")
		}
		return nil
	}
}
