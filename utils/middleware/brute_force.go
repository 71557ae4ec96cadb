package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/utils/cache"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
)

const failedLoginWindow = 15 * time.Minute

// lockoutSteps maps failed attempts inside the window to a lockout, longest first.
var lockoutSteps = []struct {
	attempts int64
	lock     time.Duration
}{
	{25, 24 * time.Hour},
	{10, time.Hour},
	{5, 2 * time.Minute},
}

// LockoutFor returns how long an IP is locked out after attempts failures,
// zero when it is not.
func LockoutFor(attempts int64) time.Duration {
	for _, step := range lockoutSteps {
		if attempts >= step.attempts {
			return step.lock
		}
	}
	return 0
}

// BruteForceProtection locks out IPs that keep failing to log in. A nil
// *BruteForceProtection is valid and never blocks.
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

// NewBruteForceProtection returns nil without Redis.
func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	if redisCache == nil {
		return nil
	}
	return &BruteForceProtection{redisCache: redisCache}
}

func attemptsKey(ip string) string { return cache.Key("login", "attempts", ip) }
func lockKey(ip string) string     { return cache.Key("login", "lock", ip) }

// CheckAndRecordAttempt answers 429 while the caller's IP is locked out.
func (b *BruteForceProtection) CheckAndRecordAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if b == nil {
			return c.Next()
		}

		locked, ttl, err := b.redisCache.Locked(c.UserContext(), lockKey(c.IP()))
		if err != nil || !locked {
			// a Redis outage never blocks logins
			return c.Next()
		}

		retryAfter := int(ttl.Seconds())
		if retryAfter <= 0 {
			retryAfter = 60
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return response.TooManyRequests(c, "Too many failed login attempts. Try again in "+strconv.Itoa(retryAfter)+" seconds")
	}
}

// RecordFailedAttempt counts a failure and locks the IP once it crosses a step.
func (b *BruteForceProtection) RecordFailedAttempt(ctx context.Context, ip, email string) {
	if b == nil {
		return
	}

	attempts, err := b.redisCache.CountWithin(ctx, attemptsKey(ip), failedLoginWindow)
	if err != nil {
		log.Warn().Err(err).Msg("failed to count login attempt")
		return
	}

	lock := LockoutFor(attempts)
	if lock == 0 {
		return
	}

	log.Warn().Str("ip", ip).Str("email", email).Int64("attempts", attempts).
		Dur("lock", lock).Msg("locking out login attempts")
	if err := b.redisCache.Lock(ctx, lockKey(ip), lock); err != nil {
		log.Warn().Err(err).Msg("failed to store login lockout")
	}
}

// RecordSuccessfulAttempt clears the IP's failures.
func (b *BruteForceProtection) RecordSuccessfulAttempt(ctx context.Context, ip string) {
	if b == nil {
		return
	}
	b.redisCache.Delete(ctx, attemptsKey(ip), lockKey(ip))
}
