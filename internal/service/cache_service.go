package service

import (
	"context"
	"encoding/json"

	"cleem-api/internal/domain"
	"cleem-api/pkg/logger"
	"cleem-api/pkg/redis"
)

// CacheService caches user projections in Redis for the session middleware.
// Every method degrades to a no-op style result on cache trouble; Redis
// being down must never fail a request.
type CacheService struct {
	client *redis.Client
	log    *logger.Logger
}

// NewCacheService creates a cache service over the given Redis client.
func NewCacheService(client *redis.Client, log *logger.Logger) *CacheService {
	return &CacheService{client: client, log: log}
}

// Get returns the cached user and whether the lookup hit.
func (c *CacheService) Get(ctx context.Context, userID string) (*domain.User, bool) {
	raw, err := c.client.Get(ctx, c.client.KeyBuilder.KeyUserByID(userID))
	if err != nil {
		if err != redis.ErrCacheMiss {
			c.log.WithError(err).Warn("User cache read failed")
		}
		return nil, false
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		c.log.WithError(err).Warn("User cache entry corrupt, dropping")
		c.Invalidate(ctx, userID)
		return nil, false
	}
	return &user, true
}

// Set stores the user projection with the standard TTL.
func (c *CacheService) Set(ctx context.Context, user *domain.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		c.log.WithError(err).Warn("Failed to marshal user for cache")
		return
	}
	if err := c.client.Set(ctx, c.client.KeyBuilder.KeyUserByID(user.ID), string(raw), redis.TTLUser); err != nil {
		c.log.WithError(err).Warn("User cache write failed")
	}
}

// Invalidate drops the cached projection after a sign-in write so the next
// protected request sees fresh fields.
func (c *CacheService) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Delete(ctx, c.client.KeyBuilder.KeyUserByID(userID)); err != nil {
		c.log.WithError(err).Warn("User cache invalidation failed")
	}
}
