// Package redis caches generated offline check-in bundles. The cache is
// an optimization only: a miss or a failure falls back to rebuilding the
// bundle from the authoritative store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type exportCache struct {
	client *redis.Client
	l      logger.Logger
}

func NewExportCache(client *redis.Client, l logger.Logger) repository.ExportCache {
	return &exportCache{client: client, l: l}
}

func (c *exportCache) bundleKey(eventID int64) string {
	return fmt.Sprintf("checkin:%d:offline-bundle", eventID)
}

// StoreBundle replaces the cached bundle atomically: delete, repopulate
// and set the TTL inside one pipeline so readers never observe a
// half-written bundle.
func (c *exportCache) StoreBundle(ctx context.Context, eventID int64, bundle map[string]string, ttl time.Duration) error {
	if len(bundle) == 0 {
		return c.InvalidateBundle(ctx, eventID)
	}

	key := c.bundleKey(eventID)
	flat := make([]interface{}, 0, len(bundle)*2)
	for k, v := range bundle {
		flat = append(flat, k, v)
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, flat...)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.l.Errorf(ctx, "repository.redis.exportCache.StoreBundle: %v", err)
		return fmt.Errorf("failed to store offline bundle: %w", err)
	}

	return nil
}

// GetBundle returns the cached bundle, or ErrNotFound on a miss.
func (c *exportCache) GetBundle(ctx context.Context, eventID int64) (map[string]string, error) {
	bundle, err := c.client.HGetAll(ctx, c.bundleKey(eventID)).Result()
	if err != nil {
		c.l.Errorf(ctx, "repository.redis.exportCache.GetBundle: %v", err)
		return nil, fmt.Errorf("failed to load offline bundle: %w", err)
	}
	if len(bundle) == 0 {
		return nil, repository.ErrNotFound
	}

	return bundle, nil
}

func (c *exportCache) InvalidateBundle(ctx context.Context, eventID int64) error {
	if err := c.client.Del(ctx, c.bundleKey(eventID)).Err(); err != nil {
		c.l.Errorf(ctx, "repository.redis.exportCache.InvalidateBundle: %v", err)
		return fmt.Errorf("failed to invalidate offline bundle: %w", err)
	}
	return nil
}
