// Package cache is a thin read-through helper over redis for catalog
// listings. Misses and redis failures fall through to the database, so
// the cache is never on the correctness path.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	CategoryListKey   = "category_list"
	productListPrefix = "product_list:"
)

// ProductListKey derives the listing cache key from the full request
// URL, so every distinct filter/page combination caches separately.
func ProductListKey(originalURL string) string {
	return productListPrefix + originalURL
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func New(client *redis.Client, ttl time.Duration, l *zap.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: l,
	}
}

// Get unmarshals the cached value into dest and reports a hit.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		c.logger.Warn("failed to decode cached value, dropping key",
			zap.String("key", key),
			zap.Error(err),
		)
		c.client.Del(ctx, key)
		return false
	}

	return true
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("failed to encode value for cache", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to set cache key", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("failed to delete cache keys", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidateProductLists drops every cached product listing page.
func (c *Cache) InvalidateProductLists(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, productListPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("failed to scan product list keys", zap.Error(err))
		return
	}

	c.Delete(ctx, keys...)
}
