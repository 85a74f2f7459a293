package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// revokedTokenPrefix is the Redis key prefix for logged-out token IDs.
const revokedTokenPrefix = "auth:revoked:"

// RevokeToken denylists a token ID until the token would have expired anyway.
func (c *Cache) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, revokedTokenKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether a token ID has been denylisted.
func (c *Cache) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := c.client.Get(ctx, revokedTokenKey(tokenID)).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, fmt.Errorf("check revoked token: %w", err)
}

func revokedTokenKey(tokenID string) string {
	return revokedTokenPrefix + tokenID
}
