package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/enhancemyseo/enhancemyseo/internal/auth"
	"github.com/enhancemyseo/enhancemyseo/internal/model"
)

const (
	discoveryKeyPrefix = "discovery:site:"

	// DefaultDiscoveryTTL is the TTL for cached site indexes.
	DefaultDiscoveryTTL = time.Hour
)

// GetSiteIndex retrieves a cached site index by normalized site URL.
// Returns ErrCacheMiss if not found or unreadable.
func (c *Cache) GetSiteIndex(ctx context.Context, site string) (*model.SiteIndex, error) {
	data, err := c.client.Get(ctx, discoveryKey(site)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var index model.SiteIndex
	if err := json.Unmarshal(data, &index); err != nil {
		// Corrupted entry - treat as miss
		return nil, ErrCacheMiss
	}
	return &index, nil
}

// SetSiteIndex stores a site index. A non-positive ttl uses DefaultDiscoveryTTL.
func (c *Cache) SetSiteIndex(ctx context.Context, index *model.SiteIndex, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultDiscoveryTTL
	}

	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("marshal site index: %w", err)
	}

	if err := c.client.Set(ctx, discoveryKey(index.Site), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateSiteIndex removes a cached site index.
func (c *Cache) InvalidateSiteIndex(ctx context.Context, site string) error {
	return c.client.Del(ctx, discoveryKey(site)).Err()
}

func discoveryKey(site string) string {
	return discoveryKeyPrefix + auth.QuickHash(site)
}
