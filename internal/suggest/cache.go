package suggest

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/counselbase/searchcore/internal/index/tokenizer"
	"github.com/counselbase/searchcore/pkg/config"
	pkgredis "github.com/counselbase/searchcore/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "suggest:"

// Cache keeps recent suggestion results in redis, keyed by the normalized
// query and curation context. Concurrent lookups for the same key collapse
// into a single compute through singleflight.
type Cache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCache(client *pkgredis.Client, cfg config.RedisConfig) *Cache {
	return &Cache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "suggest-cache"),
	}
}

func (c *Cache) Get(ctx context.Context, query string, sctx Context) (*Result, bool) {
	key := c.buildKey(query, sctx)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if pkgredis.IsNilError(err) {
			c.misses.Add(1)
			return nil, false
		}
		c.logger.Error("cache get failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	var result Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

func (c *Cache) Set(ctx context.Context, query string, sctx Context, result *Result) {
	// Loading responses are transient; caching them would hide index
	// readiness from later requests.
	if result.Status == StatusLoading {
		return
	}
	key := c.buildKey(query, sctx)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result when present, otherwise computes,
// stores, and returns it. The second return value reports a cache hit.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	query string,
	sctx Context,
	computeFn func() (*Result, error),
) (*Result, bool, error) {
	if result, ok := c.Get(ctx, query, sctx); ok {
		return result, true, nil
	}
	key := c.buildKey(query, sctx)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, query, sctx); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, sctx, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*Result), false, nil
}

// Invalidate drops every cached suggestion. Called after an index reload so
// stale rankings never outlive the artifact that produced them.
func (c *Cache) Invalidate(ctx context.Context) error {
	pattern := cacheKeyPrefix + "*"
	deleted, err := c.client.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating suggest cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the normalized query so arbitrary user input never lands
// in a redis key. Generation is deliberately excluded: it is echoed, not
// part of the result identity.
func (c *Cache) buildKey(query string, sctx Context) string {
	raw := fmt.Sprintf("%s|%s", tokenizer.Normalize(query), sctx)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash[:16])
}
