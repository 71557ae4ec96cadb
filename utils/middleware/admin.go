package middleware

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"gorm.io/datatypes"
)

// AdminAuditLog records an audit entry for the admin action once the
// handler has run.
func AdminAuditLog(store database.Storage, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminUser, ok := GetUser(c)
		if !ok {
			return c.Next()
		}

		resourceID := c.Params("id")
		if resourceID == "" {
			resourceID = c.Params("userId")
		}

		var payload datatypes.JSON
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			payload = auditPayload(c.Body())
		}

		err := c.Next()

		// fiber recycles the context after the handler returns, so copy
		// everything the goroutine needs now
		entry := model.AdminAuditLog{
			AdminID:     adminUser.ID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			Payload:     payload,
			StatusCode:  c.Response().StatusCode(),
			IPAddress:   c.IP(),
			UserAgent:   string(c.Request().Header.UserAgent()),
			Description: c.Method() + " " + c.OriginalURL(),
		}

		go func() {
			db, dbErr := store.Conn()
			if dbErr != nil {
				return
			}
			if dbErr := db.Create(&entry).Error; dbErr != nil {
				log.Warn().Err(dbErr).Str("action", action).Msg("failed to write audit log")
			}
		}()

		return err
	}
}

// auditPayload copies a JSON object body with credential fields masked.
// Anything that is not a JSON object is not recorded.
func auditPayload(body []byte) datatypes.JSON {
	var fields map[string]any
	if len(body) == 0 || json.Unmarshal(body, &fields) != nil {
		return nil
	}
	for k := range fields {
		switch strings.ToLower(k) {
		case "password", "refresh_token", "token":
			fields[k] = "[redacted]"
		}
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return datatypes.JSON(out)
}
