// Package cache implements the search engine's cache hierarchy: a bounded
// in-process L0 in front of an optional Redis L1. Every operation is
// best-effort; a failing layer falls through to the next and a request never
// fails because of the cache.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

// Per-layer TTLs for the Redis L1.
const (
	TTLFilters         = 24 * time.Hour
	TTLEmbedding       = 7 * 24 * time.Hour
	TTLEmbeddingWarmed = 30 * 24 * time.Hour
	TTLResults         = time.Hour
)

// Cache is the L0+L1 hierarchy. Three L0 maps hold parsed filters, query
// embeddings, and result id lists for burst duplicates.
type Cache struct {
	filters    *lru[json.RawMessage]
	embeddings *lru[[]float32]
	results    *lru[[]string]

	redis *redis.Client
	log   *slog.Logger
}

// New creates a cache hierarchy. A nil redis client disables L1 and the
// hierarchy degrades to the in-process maps only.
func New(rdb *redis.Client, log *slog.Logger) *Cache {
	return &Cache{
		filters:    newLRU[json.RawMessage](DefaultLRUCapacity, TTLFilters),
		embeddings: newLRU[[]float32](DefaultLRUCapacity, TTLEmbedding),
		results:    newLRU[[]string](DefaultLRUCapacity, TTLResults),
		redis:      rdb,
		log:        log.With(logger.Scope("cache")),
	}
}

// GetFilters looks up a parsed filter payload by key, L0 first then L1.
func (c *Cache) GetFilters(ctx context.Context, key string) (json.RawMessage, bool) {
	if v, ok := c.filters.Get(key); ok {
		return v, true
	}

	raw, ok := c.redisGet(ctx, key)
	if !ok {
		return nil, false
	}
	c.filters.Set(key, raw)
	return raw, true
}

// SetFilters writes a parsed filter payload to both layers.
func (c *Cache) SetFilters(ctx context.Context, key string, raw json.RawMessage) {
	c.filters.Set(key, raw)
	c.redisSet(ctx, key, []byte(raw), TTLFilters)
}

// GetEmbedding looks up a query embedding by key.
func (c *Cache) GetEmbedding(ctx context.Context, key string) ([]float32, bool) {
	if v, ok := c.embeddings.Get(key); ok {
		return v, true
	}

	raw, ok := c.redisGet(ctx, key)
	if !ok {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		c.log.Warn("corrupt cached embedding", slog.String("key", key), logger.Error(err))
		return nil, false
	}
	c.embeddings.Set(key, vec)
	return vec, true
}

// SetEmbedding writes a query embedding to both layers. Warmed entries get
// the extended TTL so scheduled common queries never expire between runs.
func (c *Cache) SetEmbedding(ctx context.Context, key string, vec []float32, warmed bool) {
	c.embeddings.Set(key, vec)

	ttl := TTLEmbedding
	if warmed {
		ttl = TTLEmbeddingWarmed
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	c.redisSet(ctx, key, raw, ttl)
}

// GetResults looks up an ordered result id list by key.
func (c *Cache) GetResults(ctx context.Context, key string) ([]string, bool) {
	if v, ok := c.results.Get(key); ok {
		return v, true
	}

	raw, ok := c.redisGet(ctx, key)
	if !ok {
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		c.log.Warn("corrupt cached results", slog.String("key", key), logger.Error(err))
		return nil, false
	}
	c.results.Set(key, ids)
	return ids, true
}

// SetResults writes an ordered result id list to both layers.
func (c *Cache) SetResults(ctx context.Context, key string, ids []string) {
	c.results.Set(key, ids)

	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	c.redisSet(ctx, key, raw, TTLResults)
}

func (c *Cache) redisGet(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil {
		return nil, false
	}

	raw, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("redis get failed", slog.String("key", key), logger.Error(err))
		return nil, false
	}
	return raw, true
}

func (c *Cache) redisSet(ctx context.Context, key string, raw []byte, ttl time.Duration) {
	if c.redis == nil {
		return
	}

	if err := c.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.Warn("redis set failed", slog.String("key", key), logger.Error(err))
	}
}
