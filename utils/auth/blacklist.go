package auth

import (
	"context"
	"time"

	"github.com/sahilchouksey/career-guidance-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Revocation reasons stored with each blacklisted token.
const (
	ReasonLogout  = "logout"
	ReasonRefresh = "token_refresh"
)

// ConnProvider hands out the shared connection pool, or an error while the
// database is unavailable.
type ConnProvider interface {
	Conn() (*gorm.DB, error)
}

// BlacklistService records revoked token IDs until the token would have
// expired anyway.
type BlacklistService struct {
	store ConnProvider
	now   func() time.Time
}

func NewBlacklistService(store ConnProvider) *BlacklistService {
	return &BlacklistService{store: store, now: time.Now}
}

// RevokeToken blacklists jti. Revoking the same token twice is not an error.
func (s *BlacklistService) RevokeToken(ctx context.Context, jti string, userID uint, expiresAt time.Time, reason string) error {
	db, err := s.store.Conn()
	if err != nil {
		return err
	}

	entry := model.JWTTokenBlacklist{
		Token:     jti,
		UserID:    userID,
		Reason:    reason,
		ExpiresAt: expiresAt.UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
}

// IsTokenRevoked reports whether jti is blacklisted and not yet expired.
func (s *BlacklistService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	db, err := s.store.Conn()
	if err != nil {
		return false, err
	}

	var hits int64
	err = db.WithContext(ctx).
		Model(&model.JWTTokenBlacklist{}).
		Where("token = ? AND expires_at > ?", jti, s.now().UTC()).
		Limit(1).
		Count(&hits).Error
	return hits > 0, err
}

// CleanupExpiredTokens deletes entries whose token has expired and returns
// how many were removed.
func (s *BlacklistService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	db, err := s.store.Conn()
	if err != nil {
		return 0, err
	}

	res := db.WithContext(ctx).
		Where("expires_at <= ?", s.now().UTC()).
		Delete(&model.JWTTokenBlacklist{})
	return res.RowsAffected, res.Error
}
