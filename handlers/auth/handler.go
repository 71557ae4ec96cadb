package auth

import (
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	authutil "github.com/sahilchouksey/career-guidance-api/utils/auth"
	"github.com/sahilchouksey/career-guidance-api/utils/middleware"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	store                database.Storage
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler. bruteForceProtection may be nil.
func NewAuthHandler(store database.Storage, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		store:                store,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(store),
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User *model.User `json:"user"`
	authutil.TokenPair
}
