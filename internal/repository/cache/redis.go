// Package cache provides a Redis cache-aside layer for short code lookups.
package cache

import (
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/metrics"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "url:"

// RedisClient is the subset of *redis.Client used by the cache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// URLLookup resolves a short code from the source of truth.
type URLLookup interface {
	GetURLByShortCode(ctx context.Context, code string) (*domain.URL, error)
}

// entry is what gets cached. The click counter is left out because it
// changes on every redirect.
type entry struct {
	ID          int64  `json:"id"`
	OriginalURL string `json:"original_url"`
	ShortCode   string `json:"short_code"`
	UserID      *int64 `json:"user_id,omitempty"`
}

// URLCache wraps a URLLookup with Redis. Redis failures are logged and
// the lookup falls through to the wrapped source.
type URLCache struct {
	next   URLLookup
	client RedisClient
	ttl    time.Duration
	log    *zap.Logger
}

func NewURLCache(next URLLookup, client RedisClient, ttl time.Duration, log *zap.Logger) *URLCache {
	return &URLCache{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("component", "url_cache")),
	}
}

// NewClient opens a go-redis client and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// GetURLByShortCode returns the cached mapping or loads and caches it.
func (c *URLCache) GetURLByShortCode(ctx context.Context, code string) (*domain.URL, error) {
	key := keyPrefix + code

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var e entry
		if jsonErr := json.Unmarshal(raw, &e); jsonErr == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return &domain.URL{ID: e.ID, OriginalURL: e.OriginalURL, ShortCode: e.ShortCode, UserID: e.UserID}, nil
		}
		c.log.Warn("dropping malformed cache entry", zap.String("key", key))
		metrics.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.log.Warn("redis get failed", zap.String("key", key), zap.Error(err))
	}

	url, err := c.next.GetURLByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(entry{ID: url.ID, OriginalURL: url.OriginalURL, ShortCode: url.ShortCode, UserID: url.UserID})
	if err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn("redis set failed", zap.String("key", key), zap.Error(err))
		}
	}

	return url, nil
}

// Invalidate drops cached mappings after an update or delete.
func (c *URLCache) Invalidate(ctx context.Context, codes ...string) {
	if len(codes) == 0 {
		return
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = keyPrefix + code
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("redis del failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
