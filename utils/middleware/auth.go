package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/auth"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	store            database.Storage
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, store database.Storage) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(store),
		store:            store,
	}
}

// authenticate validates the bearer token and loads the user. On failure it
// writes the response itself and returns ok=false.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (claims *auth.Claims, user *model.User, ok bool, err error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil, false, response.Unauthorized(c, "Missing authorization token")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, nil, false, response.Unauthorized(c, "Invalid authorization format")
	}

	claims, err = m.jwtManager.ValidateTokenOfType(parts[1], auth.TokenTypeAccess)
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return nil, nil, false, response.Unauthorized(c, "Token has expired")
	case errors.Is(err, auth.ErrWrongTokenType):
		return nil, nil, false, response.Unauthorized(c, "Invalid token type")
	case err != nil:
		return nil, nil, false, response.Unauthorized(c, "Invalid token")
	}

	db, err := m.store.Conn()
	if err != nil {
		return nil, nil, false, response.ServiceUnavailable(c, "Database is not available")
	}

	isRevoked, err := m.blacklistService.IsTokenRevoked(c.UserContext(), claims.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to check token blacklist")
		return nil, nil, false, response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return nil, nil, false, response.Unauthorized(c, "Token has been revoked")
	}

	user = &model.User{}
	if err := db.WithContext(c.UserContext()).First(user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, response.Unauthorized(c, "User not found")
		}
		return nil, nil, false, response.InternalServerError(c, "Failed to load user")
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, false, response.Unauthorized(c, "Token has been invalidated")
	}

	// role comes from the row, so a role change applies to live tokens
	c.Locals(localUser, user)
	c.Locals(localClaims, claims)

	return claims, user, true, nil
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, _, ok, err := m.authenticate(c); !ok {
			return err
		}
		return c.Next()
	}
}

// RequireRole authenticates the request and requires one of roles
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, user, ok, err := m.authenticate(c)
		if !ok {
			return err
		}

		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// RequireAdmin is middleware that requires admin role
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return m.RequireRole(model.RoleAdmin)
}

type localsKey string

const (
	localUser   localsKey = "auth.user"
	localClaims localsKey = "auth.claims"
)

func local[T any](c *fiber.Ctx, key localsKey) (T, bool) {
	v, ok := c.Locals(key).(T)
	return v, ok
}

// GetUser returns the user loaded by the auth middleware.
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	return local[*model.User](c, localUser)
}

// GetClaims returns the validated access token claims.
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	return local[*auth.Claims](c, localClaims)
}

func GetUserID(c *fiber.Ctx) (uint, bool) {
	user, ok := GetUser(c)
	if !ok {
		return 0, false
	}
	return user.ID, true
}

func GetUserRole(c *fiber.Ctx) (string, bool) {
	user, ok := GetUser(c)
	if !ok {
		return "", false
	}
	return user.Role, true
}
