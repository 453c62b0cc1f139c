// Copyright (c) 2026 TaskFlow. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/platform/constants"
	"github.com/taskflowhq/taskflow/internal/platform/sec"
)

// RedisIdentityCache implements IdentityCache using Redis.
//
// Keys follow the `auth:user:<id>` taxonomy and carry the projection as JSON.
// The cache is strictly an optimization: every caller must tolerate misses
// and connectivity errors by falling back to PostgreSQL.
type RedisIdentityCache struct {
	client *redis.Client
}

// NewIdentityCache creates a new Redis-backed IdentityCache.
func NewIdentityCache(client *redis.Client) *RedisIdentityCache {
	return &RedisIdentityCache{client: client}
}

// Get returns the cached projection for a user id.
//
// Returns [apperr.NotFound] if the entry is absent or expired.
func (cache *RedisIdentityCache) Get(ctx context.Context, userID string) (*sec.Identity, error) {
	payload, err := cache.client.Get(ctx, cache.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Cached identity")
		}
		return nil, fmt.Errorf("redis_identity_cache_get_failed: %w", err)
	}

	identity := &sec.Identity{}
	if err := json.Unmarshal(payload, identity); err != nil {
		// A corrupt entry is treated as a miss; the caller will repopulate it.
		return nil, apperr.NotFound("Cached identity")
	}

	return identity, nil
}

// Set stores a projection with the given TTL.
func (cache *RedisIdentityCache) Set(ctx context.Context, identity *sec.Identity, ttl time.Duration) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("redis_identity_cache_marshal_failed: %w", err)
	}

	if err := cache.client.Set(ctx, cache.key(identity.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_identity_cache_set_failed: %w", err)
	}

	return nil
}

// Delete removes a cached projection.
func (cache *RedisIdentityCache) Delete(ctx context.Context, userID string) error {
	if err := cache.client.Del(ctx, cache.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis_identity_cache_delete_failed: %w", err)
	}
	return nil
}

func (cache *RedisIdentityCache) key(userID string) string {
	return constants.RedisPrefixUser + userID
}
