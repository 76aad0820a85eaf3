package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gwi.com/induction-assistant/internal/config"
)

// AnswerCache keeps generated answers keyed by question and context. Cache
// failures are never fatal to a query.
type AnswerCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, answer string)
	Close() error
}

// answerKey identifies a generation by its normalized question and the
// retrieved context.
func answerKey(normQuestion, kbContext string) string {
	sum := sha256.Sum256([]byte(normQuestion + "\x00" + kbContext))
	return hex.EncodeToString(sum[:])
}

// NewAnswerCache builds the cache selected by CACHE_DRIVER.
func NewAnswerCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (AnswerCache, error) {
	switch cfg.CacheDriver {
	case config.CacheMemory:
		return NewMemoryAnswerCache(cfg.CacheTTL), nil
	case config.CacheRedis:
		return NewRedisAnswerCache(ctx, RedisCacheConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		}, logger)
	case config.CacheNone:
		return noCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
	}
}

type noCache struct{}

func (noCache) Get(context.Context, string) (string, bool) { return "", false }
func (noCache) Set(context.Context, string, string)        {}
func (noCache) Close() error                               { return nil }

// MemoryAnswerCache is a process-local TTL cache.
type MemoryAnswerCache struct {
	cache *cache.Cache
}

func NewMemoryAnswerCache(ttl time.Duration) *MemoryAnswerCache {
	return &MemoryAnswerCache{cache: cache.New(ttl, 10*time.Minute)}
}

func (c *MemoryAnswerCache) Get(_ context.Context, key string) (string, bool) {
	if x, found := c.cache.Get(key); found {
		if s, ok := x.(string); ok {
			return s, true
		}
	}
	return "", false
}

func (c *MemoryAnswerCache) Set(_ context.Context, key, answer string) {
	c.cache.Set(key, answer, cache.DefaultExpiration)
}

func (c *MemoryAnswerCache) Close() error { return nil }

type RedisCacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// RedisAnswerCache shares generated answers between replicas.
type RedisAnswerCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisAnswerCache(ctx context.Context, cfg RedisCacheConfig, logger zerolog.Logger) (*RedisAnswerCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "induction:answer:"
	}
	return &RedisAnswerCache{client: client, prefix: prefix, ttl: cfg.TTL, logger: logger}, nil
}

func (c *RedisAnswerCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("Answer cache read failed")
		return "", false
	}
	return val, true
}

func (c *RedisAnswerCache) Set(ctx context.Context, key, answer string) {
	if err := c.client.Set(ctx, c.prefix+key, answer, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Answer cache write failed")
	}
}

func (c *RedisAnswerCache) Close() error {
	return c.client.Close()
}
