package institute

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/services"
	"github.com/sahilchouksey/career-guidance-api/utils/cache"
	"github.com/sahilchouksey/career-guidance-api/utils/middleware"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
	"gorm.io/gorm"
)

const (
	listCacheVersionKey = cache.Namespace + ":institutes:list:version"
	listCacheTTL        = 5 * time.Minute
)

var errNoInstitute = errors.New("institute profile not found")

// InstituteHandler handles institute-related requests
type InstituteHandler struct {
	store        database.Storage
	cache        *cache.RedisCache
	applications *services.ApplicationService
	validator    *validation.Validator
}

// NewInstituteHandler creates a new institute handler. redisCache may be nil.
func NewInstituteHandler(store database.Storage, redisCache *cache.RedisCache) *InstituteHandler {
	return &InstituteHandler{
		store:        store,
		cache:        redisCache,
		applications: services.NewApplicationService(store),
		validator:    validation.NewValidator(),
	}
}

// InvalidateListCache drops every cached institute list page.
func InvalidateListCache(ctx context.Context, redisCache *cache.RedisCache) {
	if redisCache == nil {
		return
	}
	if _, err := redisCache.Bump(ctx, listCacheVersionKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate institute list cache")
	}
}

// ownInstitute loads the institute owned by the authenticated user
func (h *InstituteHandler) ownInstitute(c *fiber.Ctx, db *gorm.DB) (*model.Institute, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, errNoInstitute
	}

	var institute model.Institute
	err := db.WithContext(c.UserContext()).Where("user_id = ?", userID).First(&institute).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNoInstitute
	}
	return &institute, err
}

// withInstitute resolves the connection and the caller's institute, writing
// the error response itself when either fails.
func (h *InstituteHandler) withInstitute(c *fiber.Ctx, fn func(db *gorm.DB, institute *model.Institute) error) error {
	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	institute, err := h.ownInstitute(c, db)
	if errors.Is(err, errNoInstitute) {
		return response.NotFound(c, "Institute profile not found")
	}
	if err != nil {
		return response.FromDBError(c, err)
	}

	return fn(db.WithContext(c.UserContext()), institute)
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.UTC)
}
