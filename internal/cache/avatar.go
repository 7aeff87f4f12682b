// Package cache holds read-through Redis caches. Only the avatar URL cache
// lives here: profile avatars are read on every member listing, so the URL
// is kept hot with a TTL.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type AvatarCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvatarCache creates an avatar URL cache. A nil client disables caching,
// which keeps tests free of a Redis dependency.
func NewAvatarCache(client *redis.Client, ttl time.Duration) *AvatarCache {
	return &AvatarCache{client: client, ttl: ttl}
}

func avatarKey(userID uint) string {
	return fmt.Sprintf("avatar:%d", userID)
}

// Get returns the cached URL and whether it was present.
func (c *AvatarCache) Get(ctx context.Context, userID uint) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	url, err := c.client.Get(ctx, avatarKey(userID)).Result()
	if err != nil {
		return "", false
	}
	return url, true
}

// Set stores the URL with the cache TTL.
func (c *AvatarCache) Set(ctx context.Context, userID uint, url string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, avatarKey(userID), url, c.ttl)
}

// Invalidate drops the cached URL.
func (c *AvatarCache) Invalidate(ctx context.Context, userID uint) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, avatarKey(userID))
}
