package order

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	h := NewOrderHandler(database.NewStore(nil, database.Options{}))
	app := fiber.New()
	app.Get("/orders", h.ListOrders)
	app.Post("/orders", h.CreateOrder)
	app.Put("/orders/:id", h.UpdateOrder)
	app.Delete("/orders/:id", h.DeleteOrder)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out response.Response
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestCreateOrderValidation(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name    string
		body    string
		code    string
		details string
	}{
		{
			name:    "missing required fields",
			body:    `{"product":"Croissant"}`,
			code:    "VALIDATION_ERROR",
			details: "order_id",
		},
		{
			name:    "negative quantity",
			body:    `{"order_id":"ORD-1","customer_name":"Ann","product":"Bread","quantity":-2}`,
			code:    "VALIDATION_ERROR",
			details: "quantity",
		},
		{
			name:    "bad date",
			body:    `{"order_id":"ORD-1","customer_name":"Ann","product":"Bread","order_date":"31/12/2024"}`,
			code:    "VALIDATION_ERROR",
			details: "order_date",
		},
		{
			name: "malformed json",
			body: `{"order_id":`,
			code: "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := send(t, app, "POST", "/orders", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			require.NotNil(t, out.Error)
			assert.Equal(t, tt.code, out.Error.Code)
			if tt.details != "" {
				assert.Contains(t, out.Error.Details, tt.details)
			}
		})
	}
}

func TestUpdateOrderRequiresStatus(t *testing.T) {
	app := newTestApp()

	status, out := send(t, app, "PUT", "/orders/ORD-1", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, out.Error)
	assert.Equal(t, "VALIDATION_ERROR", out.Error.Code)
	assert.Contains(t, out.Error.Details, "status")
}

func TestOrdersUnavailableWithoutDatabase(t *testing.T) {
	app := newTestApp()

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{"GET", "/orders", ""},
		{"POST", "/orders", `{"order_id":"ORD-1","customer_name":"Ann","product":"Bread"}`},
		{"PUT", "/orders/ORD-1", `{"status":"Completed"}`},
		{"DELETE", "/orders/ORD-1", ""},
	}

	for _, tc := range cases {
		status, out := send(t, app, tc.method, tc.path, tc.body)
		assert.Equal(t, fiber.StatusServiceUnavailable, status, tc.method+" "+tc.path)
		require.NotNil(t, out.Error)
		assert.Equal(t, "SERVICE_UNAVAILABLE", out.Error.Code)
	}
}
