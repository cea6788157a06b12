// Package cache holds the Redis-backed session allowlist. A session token is
// valid only while its entry is present here; logout deletes the entry, which
// revokes the token regardless of its JWT expiry.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type SessionCache interface {
	Put(ctx context.Context, tokenID, accountID string, ttl time.Duration) error

	// Get returns the account id bound to the token, or "" when the session
	// is absent or expired.
	Get(ctx context.Context, tokenID string) (string, error)
	Delete(ctx context.Context, tokenID string) error
}

type sessionCache struct {
	rdb *redis.Client
}

func NewSessionCache(rdb *redis.Client) SessionCache {
	return &sessionCache{rdb: rdb}
}

func (c *sessionCache) Put(ctx context.Context, tokenID, accountID string, ttl time.Duration) error {
	return c.rdb.Set(ctx, sessionKeyPrefix+tokenID, accountID, ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, tokenID string) (string, error) {
	val, err := c.rdb.Get(ctx, sessionKeyPrefix+tokenID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *sessionCache) Delete(ctx context.Context, tokenID string) error {
	return c.rdb.Del(ctx, sessionKeyPrefix+tokenID).Err()
}
