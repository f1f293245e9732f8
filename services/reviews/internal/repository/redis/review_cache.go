package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pr-poehali-dev/fashion-store-creation/services/reviews/internal/domain"
)

const keyPrefix = "reviews:product:"

// setIfCurrent stores the list only while the product's generation still
// matches the one the caller read before loading it.
// KEYS[1] list key, KEYS[2] generation key.
// ARGV[1] expected generation, ARGV[2] payload, ARGV[3] ttl in milliseconds.
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if (gen or '0') ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// ReviewCache keeps each product's review list in Redis as JSON, next to a
// generation counter that every invalidation bumps. Generation keys never
// expire so a counter cannot fall back to a value a slow reader still holds.
type ReviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReviewCache(client *redis.Client, ttl time.Duration) *ReviewCache {
	return &ReviewCache{client: client, ttl: ttl}
}

func key(productID int) string {
	return keyPrefix + strconv.Itoa(productID)
}

func genKey(productID int) string {
	return key(productID) + ":gen"
}

// Get returns the cached list, or (nil, nil) on a miss.
func (c *ReviewCache) Get(ctx context.Context, productID int) (*domain.ReviewList, error) {
	data, err := c.client.Get(ctx, key(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get reviews: %w", err)
	}

	var list domain.ReviewList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal cached reviews: %w", err)
	}
	return &list, nil
}

// Version returns the product's current generation. A product that was never
// invalidated is at generation 0.
func (c *ReviewCache) Version(ctx context.Context, productID int) (int64, error) {
	v, err := c.client.Get(ctx, genKey(productID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get review generation: %w", err)
	}
	return v, nil
}

// Set stores list with the configured TTL if the product is still at
// version. It reports false when an invalidation happened in between and
// the list was dropped.
func (c *ReviewCache) Set(ctx context.Context, list *domain.ReviewList, version int64) (bool, error) {
	data, err := json.Marshal(list)
	if err != nil {
		return false, fmt.Errorf("marshal reviews: %w", err)
	}

	keys := []string{key(list.ProductID), genKey(list.ProductID)}
	stored, err := setIfCurrent.Run(ctx, c.client, keys,
		strconv.FormatInt(version, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set reviews: %w", err)
	}
	return stored == 1, nil
}

// Invalidate bumps the product's generation and drops its cached list in one
// transaction.
func (c *ReviewCache) Invalidate(ctx context.Context, productID int) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(productID))
		pipe.Del(ctx, key(productID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate reviews: %w", err)
	}
	return nil
}
