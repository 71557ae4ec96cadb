package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWT() *auth.JWTManager {
	return auth.NewJWTManager(auth.JWTConfig{
		Secret:        "middleware-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "test",
	})
}

func noContent(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

func TestRequireDatabase(t *testing.T) {
	app := fiber.New()
	app.Get("/", RequireDatabase(database.NewStore(nil, database.Options{})), noContent)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	jwtManager := testJWT()
	m := NewAuthMiddleware(jwtManager, database.NewStore(nil, database.Options{}))

	app := fiber.New()
	app.Get("/me", m.Required(), noContent)
	app.Get("/students", m.RequireRole(model.RoleStudent), noContent)

	access, _, err := jwtManager.GenerateAccessToken(1, "a@b.test", model.RoleStudent, 0)
	require.NoError(t, err)
	refresh, _, err := jwtManager.GenerateRefreshToken(1, "a@b.test", model.RoleStudent, 0)
	require.NoError(t, err)
	foreign, _, err := auth.NewJWTManager(auth.JWTConfig{Secret: "other", Expiry: time.Hour}).
		GenerateAccessToken(1, "a@b.test", model.RoleStudent, 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/me", "", fiber.StatusUnauthorized},
		{"wrong scheme", "/me", "Token " + access, fiber.StatusUnauthorized},
		{"garbage", "/students", "Bearer not-a-jwt", fiber.StatusUnauthorized},
		{"other secret", "/me", "Bearer " + foreign, fiber.StatusUnauthorized},
		{"refresh token", "/me", "Bearer " + refresh, fiber.StatusUnauthorized},
		{"valid token, no database", "/students", "Bearer " + access, fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestNilBruteForceProtectionNeverBlocks(t *testing.T) {
	bf := NewBruteForceProtection(nil)
	assert.Nil(t, bf)

	app := fiber.New()
	app.Post("/login", bf.CheckAndRecordAttempt(), noContent)

	for i := 0; i < 10; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}

func TestLockoutFor(t *testing.T) {
	assert.Zero(t, LockoutFor(1))
	assert.Zero(t, LockoutFor(4))
	assert.Equal(t, 2*time.Minute, LockoutFor(5))
	assert.Equal(t, time.Hour, LockoutFor(10))
	assert.Equal(t, time.Hour, LockoutFor(24))
	assert.Equal(t, 24*time.Hour, LockoutFor(30))
}

func TestCORSConfig(t *testing.T) {
	wildcard := corsConfig(nil)
	assert.Equal(t, "*", wildcard.AllowOrigins)
	assert.False(t, wildcard.AllowCredentials)

	listed := corsConfig([]string{"https://a.example", "https://b.example"})
	assert.Equal(t, "https://a.example,https://b.example", listed.AllowOrigins)
	assert.True(t, listed.AllowCredentials)
}

func TestSetupSecurityRateLimit(t *testing.T) {
	app := fiber.New()
	SetupSecurity(app, SecurityConfig{RateLimitRequests: 1, RateLimitWindow: time.Minute})
	app.Get("/", noContent)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestAuditPayloadMasksCredentials(t *testing.T) {
	out := auditPayload([]byte(`{"email":"registrar@unitech.test","password":"hunter22","name":"UniTech"}`))
	require.NotNil(t, out)
	assert.JSONEq(t, `{"email":"registrar@unitech.test","password":"[redacted]","name":"UniTech"}`, string(out))

	assert.Nil(t, auditPayload(nil))
	assert.Nil(t, auditPayload([]byte(`[1,2,3]`)))
	assert.Nil(t, auditPayload([]byte(`not json`)))
}
