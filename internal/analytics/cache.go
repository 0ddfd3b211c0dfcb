package analytics

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

const (
	cacheVersionKey = "ekklesia:metrics:version"
	// BumpChannel carries version bumps published after records change.
	BumpChannel = "ekklesia.metrics.bump"
)

// Cache stores rendered reports in Redis under a global version. Bumping
// the version orphans every key built before it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) disabled() bool {
	return c == nil || c.client == nil
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c.disabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		ver = 0
	case err != nil:
		return 0, fmt.Errorf("cache: read version: %w", err)
	}
	if ver > 0 {
		return ver, nil
	}
	// SetNX keeps a concurrent bump from being overwritten.
	if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
		return 0, fmt.Errorf("cache: init version: %w", err)
	}
	return c.client.Get(ctx, cacheVersionKey).Int64()
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c.disabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return joined + ":v" + strconv.FormatInt(ver, 10), nil
}

// FetchJSON loads a cached value into dest or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if !c.disabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return fmt.Errorf("cache: get %s: %w", key, err)
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if !c.disabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return fmt.Errorf("cache: set %s: %w", key, err)
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates the cache by incrementing the global version and
// publishing the new version.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
	if c.disabled() {
		return 0, nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return 0, fmt.Errorf("cache: bump: %w", err)
	}
	if err := c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err(); err != nil {
		return ver, fmt.Errorf("cache: publish bump: %w", err)
	}
	return ver, nil
}

// ListenForInvalidation subscribes to version bumps published by other
// processes. A numeric payload is adopted as the version; anything else
// increments it. onBump, when set, sees every applied version.
func (c *Cache) ListenForInvalidation(ctx context.Context, channel string, onBump func(int64)) error {
	if c.disabled() {
		return nil
	}
	if channel == "" {
		channel = BumpChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("cache: subscribe %s: %w", channel, err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err == nil && ver > 0 {
					err = c.adoptVersion(ctx, ver)
				} else {
					ver, err = c.client.Incr(ctx, cacheVersionKey).Result()
				}
				if err == nil && onBump != nil {
					onBump(ver)
				}
			}
		}
	}()
	return nil
}

// adoptVersion raises the local version to ver; it never moves backwards.
func (c *Cache) adoptVersion(ctx context.Context, ver int64) error {
	current, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if current >= ver {
		return nil
	}
	return c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
}

// cached serves a report through the cache. Concurrent callers asking for
// the same key share one load.
func cached[T any](ctx context.Context, s *Service, parts []string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	base := strings.Join(parts, ":")
	v, err, _ := flight(ctx, base, func(ctx context.Context) (any, error) {
		if s.cache.disabled() {
			return load(ctx)
		}
		key, err := s.cache.BuildKey(ctx, base)
		if err != nil {
			return nil, err
		}
		var out T
		err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return load(ctx)
		})
		return out, err
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("analytics: cached value for %s has type %T", base, v)
	}
	return out, nil
}
