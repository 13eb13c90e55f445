package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no image is cached for an item code.
var ErrCacheMiss = errors.New("cache miss")

// noImage is cached for item codes whose product has no image, so repeated
// lookups do not hit Mongo.
const noImage = "-"

// ImageCache caches item code -> first product image URL.
type ImageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewImageCache(client *redis.Client, ttl time.Duration) *ImageCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ImageCache{client: client, ttl: ttl}
}

// Get returns the cached URL. An empty URL means the product has no image.
func (c *ImageCache) Get(ctx context.Context, itemCode string) (string, error) {
	val, err := c.client.Get(ctx, imageKey(itemCode)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	if val == noImage {
		return "", nil
	}
	return val, nil
}

func (c *ImageCache) Set(ctx context.Context, itemCode, url string) error {
	if url == "" {
		url = noImage
	}
	if err := c.client.Set(ctx, imageKey(itemCode), url, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func imageKey(itemCode string) string {
	return "wholesale:image:" + itemCode
}
