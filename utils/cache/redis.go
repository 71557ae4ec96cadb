package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by GetJSON when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Namespace prefixes every key this process writes, so one Redis can be
// shared with other services.
const Namespace = "career-guidance"

// RedisCache is the optional Redis layer behind the institute list cache and
// the login lockout. Callers hold a *RedisCache that is nil when REDIS_URL is
// unset and must check for nil themselves.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache parses a redis:// or rediss:// URL and pings the server.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Key joins parts under Namespace: Key("institutes", "list") is
// "career-guidance:institutes:list".
func Key(parts ...string) string {
	return Namespace + ":" + strings.Join(parts, ":")
}

// GetJSON decodes the value stored at key into dest.
func (r *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// SetJSON stores value encoded as JSON for ttl.
func (r *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, raw, ttl).Err()
}

// Version reads a generation counter, 0 when unset. Cached lists embed it in
// their key so Bump invalidates them all at once.
func (r *RedisCache) Version(ctx context.Context, key string) (int64, error) {
	v, err := r.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Bump advances a generation counter.
func (r *RedisCache) Bump(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

// CountWithin increments a counter whose window starts at the first hit and
// lasts for window.
func (r *RedisCache) CountWithin(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Lock marks key as held for d.
func (r *RedisCache) Lock(ctx context.Context, key string, d time.Duration) error {
	return r.client.Set(ctx, key, "locked", d).Err()
}

// Locked reports whether key is held and for how much longer.
func (r *RedisCache) Locked(ctx context.Context, key string) (bool, time.Duration, error) {
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	// -2: no key, -1: key without expiry
	switch {
	case ttl == -2:
		return false, 0, nil
	case ttl < 0:
		return true, 0, nil
	}
	return true, ttl, nil
}

// Delete removes keys.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
