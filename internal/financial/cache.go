package financial

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionPrefix = "financial:version:"

// Cache is a per-user Redis read-through cache. Each user has a version
// counter; bumping it orphans every entry cached for that user.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client or a non-positive ttl
// disables caching.
func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Enabled reports whether values are stored at all.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Version returns the user's cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context, userID int64) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	key := versionKey(userID)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX keeps a concurrent Invalidate from being overwritten.
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, key).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key for a user's resource at the current
// version.
func (c *Cache) BuildKey(ctx context.Context, userID int64, resource Resource) (string, error) {
	parts := []string{"financial", string(resource), strconv.FormatInt(userID, 10)}
	if !c.Enabled() {
		return strings.Join(parts, ":"), nil
	}
	ver, err := c.Version(ctx, userID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", strings.Join(parts, ":"), ver), nil
}

// FetchJSON loads a cached value into dest or populates it using loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("financial cache: loader required")
	}
	if c.Enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.Enabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate drops every entry cached for userID.
func (c *Cache) Invalidate(ctx context.Context, userID int64) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Incr(ctx, versionKey(userID)).Err()
}

func versionKey(userID int64) string {
	return cacheVersionPrefix + strconv.FormatInt(userID, 10)
}
