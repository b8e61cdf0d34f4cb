// Package cache persists aggregation results keyed by endpoint and selection
// fingerprint. Entries never expire; the whole cache is cleared when the
// active selection changes.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/senzi/weibochat-insight/internal/config"
)

// Cache stores serialized aggregation results. The backend is selected by
// configuration: "local" keeps one JSON file per entry under LocalPath,
// "redis" keeps entries under KeyPrefix.
type Cache struct {
	cfg   config.CacheConfig
	redis *redis.Client
}

// New creates a cache for the configured backend.
func New(cfg config.CacheConfig) (*Cache, error) {
	c := &Cache{cfg: cfg}

	switch cfg.Type {
	case "local":
		if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	case "redis":
		c.redis = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}

	return c, nil
}

// Get returns the stored value for key and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.redis != nil {
		data, err := c.redis.Get(ctx, c.cfg.KeyPrefix+key).Bytes()
		if err == redis.Nil {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("cache read %s: %w", key, err)
		}
		return data, true, nil
	}

	data, err := os.ReadFile(c.entryPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache read %s: %w", key, err)
	}
	return data, true, nil
}

// Put stores a value under key, overwriting any previous entry.
func (c *Cache) Put(ctx context.Context, key string, value []byte) error {
	if c.redis != nil {
		if err := c.redis.Set(ctx, c.cfg.KeyPrefix+key, value, 0).Err(); err != nil {
			return fmt.Errorf("cache write %s: %w", key, err)
		}
		return nil
	}

	if err := os.WriteFile(c.entryPath(key), value, 0644); err != nil {
		return fmt.Errorf("cache write %s: %w", key, err)
	}
	return nil
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) error {
	if c.redis != nil {
		keys, err := c.redis.Keys(ctx, c.cfg.KeyPrefix+"*").Result()
		if err != nil {
			return fmt.Errorf("cache clear: %w", err)
		}
		if len(keys) == 0 {
			return nil
		}
		if err := c.redis.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("cache clear: %w", err)
		}
		return nil
	}

	entries, err := os.ReadDir(c.cfg.LocalPath)
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.cfg.LocalPath, entry.Name())); err != nil {
			return fmt.Errorf("cache clear: %w", err)
		}
	}
	return nil
}

// Len reports the number of stored entries.
func (c *Cache) Len(ctx context.Context) (int, error) {
	if c.redis != nil {
		keys, err := c.redis.Keys(ctx, c.cfg.KeyPrefix+"*").Result()
		if err != nil {
			return 0, err
		}
		return len(keys), nil
	}

	entries, err := os.ReadDir(c.cfg.LocalPath)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			n++
		}
	}
	return n, nil
}

// entryPath maps a key to its file. Keys are built from validated file names
// and endpoint names; Base guards against separators all the same.
func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.cfg.LocalPath, filepath.Base(key)+".json")
}
