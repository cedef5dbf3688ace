// Package cache provides the TTL cache sitting between the request path and
// the marketplace fetcher. Redis is used when configured, with an in-memory
// fallback for single-process deployments.
package cache

import (
	"context"
	"sync"
	"time"

	redis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const opTimeout = 500 * time.Millisecond

// Cache is a byte-oriented TTL cache.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte, ttl time.Duration)
	Delete(key string)
	Clear()
	Kind() string
}

type memory struct {
	mu sync.Mutex
	m  map[string]entry
}

type entry struct {
	b   []byte
	exp time.Time
}

// NewMemory returns an in-process cache.
func NewMemory() Cache { return &memory{m: make(map[string]entry)} }

func (c *memory) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || (!e.exp.IsZero() && time.Now().After(e.exp)) {
		delete(c.m, key)
		return nil, false
	}
	return e.b, true
}

func (c *memory) Set(key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{b: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	c.m[key] = e
}

func (c *memory) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

func (c *memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]entry)
}

func (c *memory) Kind() string { return "memory" }

type redisCache struct {
	r *redis.Client
}

// NewRedis wraps an existing redis client.
func NewRedis(client *redis.Client) Cache {
	return &redisCache{r: client}
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	v, err := r.r.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

func (r *redisCache) Set(key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := r.r.Set(ctx, key, val, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Redis set failed")
	}
}

func (r *redisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_ = r.r.Del(ctx, key).Err()
}

func (r *redisCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := r.r.FlushDB(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis flush failed")
	}
}

func (r *redisCache) Kind() string { return "redis" }

// New selects the redis adapter when an address is configured, memory
// otherwise.
func New(redisAddr string, redisDB int) Cache {
	if redisAddr == "" {
		return NewMemory()
	}
	log.Info().Str("addr", redisAddr).Msg("Using redis cache")
	return NewRedis(redis.NewClient(&redis.Options{Addr: redisAddr, DB: redisDB}))
}
