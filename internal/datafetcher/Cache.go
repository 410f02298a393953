/*

This file contains the Redis snapshot cache for yield records. It sits in
front of the aggregator client so repeated cycles inside the TTL reuse the
same snapshot instead of hammering the public API.

*/

package datafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openvault-labs/yieldrouter/internal/logger"
	"github.com/openvault-labs/yieldrouter/internal/types"
)

var cacheLogger = logger.GetForComponent("yield_cache")

// DefaultCacheTTL is short enough that a cycle never acts on yields older
// than one refresh interval.
const DefaultCacheTTL = 45 * time.Second

const cacheKey = "yieldrouter:yields:latest"

// CachedFeed wraps an upstream YieldFeed with a Redis snapshot cache. Cache
// failures degrade to the upstream fetch; a dead Redis never blocks a cycle.
type CachedFeed struct {
	upstream YieldFeed
	client   *redis.Client
	ttl      time.Duration
}

// NewCachedFeed wraps upstream with the given Redis client. A zero or
// negative ttl falls back to DefaultCacheTTL.
func NewCachedFeed(upstream YieldFeed, client *redis.Client, ttl time.Duration) (*CachedFeed, error) {
	if upstream == nil {
		return nil, errors.New("upstream feed cannot be nil")
	}
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFeed{upstream: upstream, client: client, ttl: ttl}, nil
}

// FetchYields returns the cached snapshot when one is live, otherwise fetches
// from upstream and stores the result.
func (c *CachedFeed) FetchYields(ctx context.Context) ([]types.YieldRecord, error) {
	cached, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var records []types.YieldRecord
		if jsonErr := json.Unmarshal(cached, &records); jsonErr == nil && len(records) > 0 {
			cacheLogger.Debug().Int("records", len(records)).Msg("Serving yields from cache")
			return records, nil
		}
		cacheLogger.Warn().Msg("Cached yield snapshot is malformed, refetching")
	} else if !errors.Is(err, redis.Nil) {
		cacheLogger.Warn().Err(err).Msg("Cache read failed, falling through to upstream")
	}

	records, err := c.upstream.FetchYields(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		// The fetch succeeded; a marshal failure only costs us the cache entry.
		cacheLogger.Error().Err(err).Msg("Failed to marshal yield snapshot for caching")
		return records, nil
	}
	if err := c.client.Set(ctx, cacheKey, payload, c.ttl).Err(); err != nil {
		cacheLogger.Warn().Err(err).Msg("Cache write failed")
	}

	return records, nil
}

// Invalidate drops the cached snapshot so the next fetch goes upstream.
func (c *CachedFeed) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("invalidating yield cache: %w", err)
	}
	return nil
}
