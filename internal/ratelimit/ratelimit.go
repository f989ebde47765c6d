// Package ratelimit throttles requests from users who do not hold the
// unlimited_requests capability, built on third_party/cache's Redis
// wrapper. The counter itself is the standard Redis fixed-window
// INCR+EXPIRE pattern.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// Limiter enforces a fixed per-window request budget keyed by login.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLimiter builds a Limiter allowing limit requests per window.
func NewLimiter(client *redis.Client, limit int64, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window}
}

// Allow increments login's counter for the current window and returns
// a forbidden error once the limit is exceeded. Holders of
// unlimited_requests always pass.
func (l *Limiter) Allow(ctx context.Context, login string, caps capability.Set) error {
	if caps.Has(capability.UnlimitedRequests) {
		return nil
	}

	key := fmt.Sprintf("ratelimit:%s:%d", login, time.Now().Unix()/int64(l.window.Seconds()))
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("ratelimit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("ratelimit expire: %w", err)
		}
	}
	if count > l.limit {
		return vaulterr.New(vaulterr.Forbidden, "rate limit exceeded")
	}
	return nil
}
