package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// idem:order:create:{key} -> 1
const keyIdemOrderCreate = "idem:order:create:%s"

// DefaultIdempotencyTTL keeps a claimed checkout key around long enough to
// catch client retries without pinning keys forever.
const DefaultIdempotencyTTL = 24 * time.Hour

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// IdempotencyGuard claims checkout idempotency keys in Redis. SetNX makes
// the claim atomic across concurrent submissions of the same key.
type IdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyGuard(client *redis.Client, ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyGuard{client: client, ttl: ttl}
}

func (g *IdempotencyGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, fmt.Sprintf(keyIdemOrderCreate, key), 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache: failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, fmt.Sprintf(keyIdemOrderCreate, key)).Err(); err != nil {
		return fmt.Errorf("cache: failed to release idempotency key: %w", err)
	}
	return nil
}
