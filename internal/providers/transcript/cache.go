package transcript

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"aititle/internal/domain"
	"aititle/internal/infra"
)

const cacheKeyPrefix = "transcript:"

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("transcript cache miss")

// Cache is the key/value contract the cached provider needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache adapts a go-redis client to Cache.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to redisURL and verifies the connection.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// CachedProvider is a read-through cache in front of another provider. Only
// successful fetches are stored; cache faults fall through to the inner provider.
type CachedProvider struct {
	inner  domain.TranscriptProvider
	cache  Cache
	ttl    time.Duration
	logger infra.Logger
}

func NewCachedProvider(inner domain.TranscriptProvider, cache Cache, ttl time.Duration, logger infra.Logger) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedProvider) FetchTranscript(ctx context.Context, videoID string) (string, error) {
	key := cacheKeyPrefix + videoID
	cached, err := c.cache.Get(ctx, key)
	switch {
	case err == nil && cached != "":
		c.logger.Debug().Str("video_id", videoID).Msg("transcript: cache hit")
		return cached, nil
	case err != nil && !errors.Is(err, ErrCacheMiss):
		c.logger.Warn().Err(err).Str("video_id", videoID).Msg("transcript: cache read failed")
	}

	text, err := c.inner.FetchTranscript(ctx, videoID)
	if err != nil || text == "" {
		return text, err
	}
	if err := c.cache.Set(ctx, key, text, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("video_id", videoID).Msg("transcript: cache write failed")
	}
	return text, nil
}

var _ domain.TranscriptProvider = (*CachedProvider)(nil)
