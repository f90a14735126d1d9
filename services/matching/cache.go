package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lifedrop/models"

	"github.com/go-redis/redis/v8"
)

const (
	matchCachePrefix = "match:"
	generationKey    = "match:generation"
)

// Invalidator is told whenever donor state that feeds a match list changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// MatchCache keeps recently computed match lists. Entries are scoped to a
// donor-state generation; Invalidate starts a new one, so lists computed
// before a donor changed are never served again.
type MatchCache interface {
	Invalidator
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, generation int64, requestID string) (*models.MatchResponse, bool, error)
	Set(ctx context.Context, generation int64, requestID string, resp *models.MatchResponse, ttl time.Duration) error
}

// RedisMatchCache stores match lists as JSON under
// "match:<generation>:<request id>" and the generation counter under
// "match:generation".
type RedisMatchCache struct {
	Client *redis.Client
}

func matchKey(generation int64, requestID string) string {
	return fmt.Sprintf("%s%d:%s", matchCachePrefix, generation, requestID)
}

func (c *RedisMatchCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.Client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("match cache generation: %w", err)
	}
	return gen, nil
}

func (c *RedisMatchCache) Invalidate(ctx context.Context) error {
	if err := c.Client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("match cache invalidate: %w", err)
	}
	return nil
}

func (c *RedisMatchCache) Get(ctx context.Context, generation int64, requestID string) (*models.MatchResponse, bool, error) {
	raw, err := c.Client.Get(ctx, matchKey(generation, requestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("match cache get: %w", err)
	}
	var resp models.MatchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, fmt.Errorf("match cache decode: %w", err)
	}
	return &resp, true, nil
}

func (c *RedisMatchCache) Set(ctx context.Context, generation int64, requestID string, resp *models.MatchResponse, ttl time.Duration) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("match cache encode: %w", err)
	}
	return c.Client.Set(ctx, matchKey(generation, requestID), raw, ttl).Err()
}
