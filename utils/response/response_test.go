package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFromDBError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		opts   []DBErrorOptions
		status int
		code   string
	}{
		{"duplicate", gorm.ErrDuplicatedKey, nil, fiber.StatusConflict, "DUPLICATE_ENTRY"},
		{"duplicate override", gorm.ErrDuplicatedKey, []DBErrorOptions{{DuplicateStatus: fiber.StatusBadRequest}}, fiber.StatusBadRequest, "DUPLICATE_ENTRY"},
		{"not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), nil, fiber.StatusNotFound, "NOT_FOUND"},
		{"foreign key", gorm.ErrForeignKeyViolated, nil, fiber.StatusBadRequest, "FOREIGN_KEY_VIOLATION"},
		{"not ready", database.ErrNotReady, nil, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"other", fmt.Errorf("connection reset"), nil, fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return FromDBError(c, tc.err, tc.opts...)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var out Response
			require.NoError(t, json.Unmarshal(body, &out))
			assert.False(t, out.Success)
			require.NotNil(t, out.Error)
			assert.Equal(t, tc.code, out.Error.Code)
		})
	}
}

func TestCalculatePagination(t *testing.T) {
	meta := CalculatePagination(2, 10, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 2, meta.CurrentPage)

	meta = CalculatePagination(0, 500, 5)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 100, meta.PerPage)
}

func TestEmptyMessagesFallBack(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return Forbidden(c, "") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Error)
	assert.Equal(t, "FORBIDDEN", out.Error.Code)
	assert.Equal(t, "Access forbidden", out.Error.Message)
}
