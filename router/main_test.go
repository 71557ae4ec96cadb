package router

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/api"
	"github.com/sahilchouksey/career-guidance-api/config"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.EnvironmentVariable {
	return &config.EnvironmentVariable{
		GO_ENV:              "test",
		JWT_SECRET:          "test-secret",
		JWT_ISSUER:          "career-guidance-api",
		JWT_EXPIRY:          time.Hour,
		JWT_REFRESH_EXPIRY:  24 * time.Hour,
		ALLOWED_ORIGINS:     "*",
		RATE_LIMIT_REQUESTS: 1000,
	}
}

// degradedApp wires every route against a store that never connected.
func degradedApp(t *testing.T) *fiber.App {
	t.Helper()
	app := api.NewAPIServer(":0").GetEngine()
	SetupRoutes(app, Dependencies{
		Config: testConfig(),
		Store:  database.NewStore(nil, database.Options{}),
	})
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestDiagnosticsWorkWhileDegraded(t *testing.T) {
	app := degradedApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Career Guidance Platform API", decode(t, resp.Body)["name"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "DEGRADED", body["status"])
	assert.Equal(t, "disconnected", body["database"])
}

func TestDatabaseRoutesReturn503WhileDegraded(t *testing.T) {
	app := degradedApp(t)

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{"GET", "/api/institutes", ""},
		{"GET", "/api/institutes/1", ""},
		{"GET", "/api/orders", ""},
		{"POST", "/api/orders", `{"order_id":"A1","customer_name":"Ann","product":"Bread"}`},
		{"POST", "/api/auth/login", `{"email":"a@b.co","password":"secret1"}`},
		{"GET", "/api/admin/stats/public", ""},
		{"GET", "/api/admin/stats", ""},
		{"GET", "/api/students/profile", ""},
		{"POST", "/api/applications/apply", `{"course_id":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

			body := decode(t, resp.Body)
			assert.Equal(t, false, body["success"])
			errBody, ok := body["error"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "SERVICE_UNAVAILABLE", errBody["code"])
		})
	}
}

func TestUnknownRouteListsAvailableRoutes(t *testing.T) {
	app := degradedApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := decode(t, resp.Body)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "ROUTE_NOT_FOUND", errBody["code"])
	assert.Contains(t, errBody["message"], "GET /api/nope")

	routes, ok := body["available_routes"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, routes, "GET /api/health")
	assert.Contains(t, routes, "POST /api/applications/apply")
	assert.Contains(t, routes, "DELETE /api/orders/:id")
}

func TestUnknownPathsUnderProtectedPrefixes(t *testing.T) {
	app := degradedApp(t)

	for _, path := range []string{"/api/admin/xyz", "/api/admin/users/5/extra", "/api/students/xyz", "/api/auth/xyz"} {
		t.Run(path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

			errBody := decode(t, resp.Body)["error"].(map[string]interface{})
			assert.Equal(t, "ROUTE_NOT_FOUND", errBody["code"])
		})
	}
}

func TestRouteListing(t *testing.T) {
	app := degradedApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/test", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, "API is working", body["message"])
	data := body["data"].(map[string]interface{})
	routes := data["routes"].([]interface{})
	assert.Contains(t, routes, "GET /api/institutes/me")
	assert.Contains(t, routes, "PUT /api/institutes/applications/:applicationId/status")
	assert.NotContains(t, routes, "HEAD /ping")
}
