package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"fiber not found", fiber.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"method not allowed", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"client error", fiber.NewError(fiber.StatusUnprocessableEntity, "bad input"), fiber.StatusUnprocessableEntity, "REQUEST_ERROR"},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewAPIServer(":0")
			server.GetEngine().Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := server.GetEngine().Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			raw, _ := io.ReadAll(resp.Body)
			var out response.Response
			require.NoError(t, json.Unmarshal(raw, &out))
			require.NotNil(t, out.Error)
			assert.Equal(t, tt.code, out.Error.Code)
		})
	}
}
