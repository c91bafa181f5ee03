package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

type localEntry struct {
	expires time.Time
	data    []byte
}

// Cache stores raw response bodies in redis, with a short lived in process
// copy in front of it so hot queries skip the network round trip.
type Cache struct {
	Addr     string
	Password string
	DB       int
	prefix   string
	localTTL time.Duration
	client   *redis.Client
	mu       sync.RWMutex
	memCache map[string]localEntry
	now      func() time.Time
}

func NewCache(addr, password string, db int, prefix string) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{
		Addr:     addr,
		Password: password,
		DB:       db,
		prefix:   prefix,
		localTTL: 10 * time.Second,
		client:   rdb,
		memCache: make(map[string]localEntry),
		now:      time.Now,
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

func (c *Cache) getLocal(key string) ([]byte, bool) {
	c.mu.RLock()
	local, found := c.memCache[key]
	c.mu.RUnlock()
	if !found {
		return nil, false
	}
	if local.expires.Before(c.now()) {
		c.mu.Lock()
		delete(c.memCache, key)
		c.mu.Unlock()
		return nil, false
	}
	return local.data, true
}

func (c *Cache) setLocal(key string, data []byte, expiration time.Duration) {
	ttl := min(expiration, c.localTTL)
	c.mu.Lock()
	c.memCache[key] = localEntry{expires: c.now().Add(ttl), data: data}
	c.mu.Unlock()
}

func (c *Cache) GetRaw(ctx context.Context, key string) ([]byte, error) {
	if data, ok := c.getLocal(key); ok {
		return data, nil
	}
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	c.setLocal(key, data, c.localTTL)
	return data, nil
}

func (c *Cache) SetRaw(ctx context.Context, key string, data []byte, expiration time.Duration) error {
	c.setLocal(key, data, expiration)
	return c.client.Set(ctx, c.key(key), data, expiration).Err()
}

// Clear drops every cached entry under the prefix, called when the catalog changes.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.memCache = make(map[string]localEntry)
	c.mu.Unlock()

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
