// Package cache holds the gallery ranking caches: a shared redis cache when
// REDIS_URL is set and a process-local LRU otherwise.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/gallery"
	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/infrastructure/metrics"
)

const cacheVersion = "v1"

const (
	backendLRU   = "lru"
	backendRedis = "redis"
)

// NewRankingCache picks redis when configured and reachable, the LRU otherwise.
func NewRankingCache(cfg *config.Config) (gallery.RankingCache, error) {
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisCache, err := NewRedisRankingCache(cfg.RedisURL)
		if err == nil {
			return redisCache, nil
		}
		log := logger.GetLogger()
		log.Warn().Err(err).Msg("redis ranking cache unavailable, falling back to in-process cache")
	}
	return NewLRURankingCache(cfg.TrendingCacheSize)
}

type lruEntry struct {
	ids       []uint
	expiresAt time.Time
}

// LRURankingCache is a size-bounded in-process cache with per-entry expiry.
type LRURankingCache struct {
	cache *lru.Cache
	now   func() time.Time
}

// NewLRURankingCache creates an LRU cache holding up to size rankings.
func NewLRURankingCache(size int) (*LRURankingCache, error) {
	if size <= 0 {
		size = 64
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRURankingCache{cache: c, now: time.Now}, nil
}

// Get implements gallery.RankingCache.
func (c *LRURankingCache) Get(_ context.Context, key string) ([]uint, bool) {
	value, ok := c.cache.Get(key)
	if !ok {
		metrics.RecordRankingCache(backendLRU, false)
		return nil, false
	}
	entry := value.(lruEntry)
	if !c.now().Before(entry.expiresAt) {
		c.cache.Remove(key)
		metrics.RecordRankingCache(backendLRU, false)
		return nil, false
	}
	metrics.RecordRankingCache(backendLRU, true)
	return append([]uint(nil), entry.ids...), true
}

// Set implements gallery.RankingCache. A non-positive ttl stores nothing.
func (c *LRURankingCache) Set(_ context.Context, key string, ids []uint, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.cache.Add(key, lruEntry{ids: append([]uint(nil), ids...), expiresAt: c.now().Add(ttl)})
}

// RedisRankingCache shares rankings across replicas.
type RedisRankingCache struct {
	client redis.UniversalClient
	once   sync.Once
}

// NewRedisRankingCache connects to redisURL, a single URL or a comma
// separated list of cluster addresses.
func NewRedisRankingCache(redisURL string) (*RedisRankingCache, error) {
	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		log := logger.GetLogger()
		log.Warn().Msg("Ignoring non-zero DB when using Redis Cluster configuration")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log := logger.GetLogger()
	log.Info().Msg("Successfully connected to Redis ranking cache")
	return NewRedisRankingCacheWithClient(client), nil
}

// NewRedisRankingCacheWithClient wraps an existing client.
func NewRedisRankingCacheWithClient(client redis.UniversalClient) *RedisRankingCache {
	return &RedisRankingCache{client: client}
}

func versionedKey(key string) string {
	return "sovereign-chat:" + cacheVersion + ":" + key
}

// Get implements gallery.RankingCache. Redis errors count as misses.
func (c *RedisRankingCache) Get(ctx context.Context, key string) ([]uint, bool) {
	raw, err := c.client.Get(ctx, versionedKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log := logger.GetLogger()
			log.Warn().Err(err).Str("key", key).Msg("redis ranking cache read failed")
		}
		metrics.RecordRankingCache(backendRedis, false)
		return nil, false
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		log := logger.GetLogger()
		log.Warn().Err(err).Str("key", key).Msg("discarding undecodable ranking cache entry")
		metrics.RecordRankingCache(backendRedis, false)
		return nil, false
	}
	metrics.RecordRankingCache(backendRedis, true)
	return ids, true
}

// Set implements gallery.RankingCache.
func (c *RedisRankingCache) Set(ctx context.Context, key string, ids []uint, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, versionedKey(key), payload, ttl).Err(); err != nil {
		log := logger.GetLogger()
		log.Warn().Err(err).Str("key", key).Msg("redis ranking cache write failed")
	}
}

// Close releases the redis connection pool.
func (c *RedisRankingCache) Close() error {
	var err error
	c.once.Do(func() { err = c.client.Close() })
	return err
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}
		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
		if opts.DialTimeout == 0 {
			opts.DialTimeout = parsed.DialTimeout
		}
	}
	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no Redis addresses provided")
	}
	return opts, nil
}
