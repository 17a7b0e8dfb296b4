package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const tokenCacheSize = 8 * 1024 * 1024

// LoginChecker resolves session tokens from redis, with an in-process cache in front of it.
type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
	cache       *freecache.Cache
	cacheTTL    time.Duration
}

// NewLoginChecker returns a checker for sessions created by SessionStore.
// cacheTTL of zero disables the in-process cache.
func NewLoginChecker(ttl time.Duration, redisClient *redis.Client, cacheTTL time.Duration) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
		cache:       freecache.NewCache(tokenCacheSize),
		cacheTTL:    cacheTTL,
	}
}

func (c *LoginChecker) UserID(ctx context.Context, token string) (uuid.UUID, error) {
	sessionKey := []byte(sessionKeyPrefix + token)

	value, err := c.cache.Get(sessionKey)
	if err != nil {
		stored, err := c.redisClient.Get(ctx, string(sessionKey)).Result()
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrUnauthorized
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("get session: %w", err)
		}
		value = []byte(stored)
		if c.cacheTTL > 0 {
			// a failed set only means the next request goes to redis again
			_ = c.cache.Set(sessionKey, value, int(c.cacheTTL.Seconds()))
		}
	}

	userID, createdAt, err := parseSessionValue(string(value))
	if err != nil {
		c.cache.Del(sessionKey)
		return uuid.Nil, fmt.Errorf("%w: %s", ErrUnauthorized, err)
	}
	if time.Since(createdAt) > c.ttl {
		c.cache.Del(sessionKey)
		return uuid.Nil, ErrUnauthorized
	}

	return userID, nil
}
