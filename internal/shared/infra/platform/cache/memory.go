package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// cacheItem guarda el valor y el tiempo de expiración.
type cacheItem struct {
	value     []byte // bytes serializados, igual que en Redis
	expiresAt time.Time
}

// MemoryCache implementa Cache con un mapa. Las claves caducadas se tratan
// como miss y se purgan en la siguiente escritura.
type MemoryCache struct {
	mu         sync.RWMutex
	store      map[string]cacheItem
	defaultTTL time.Duration
	now        func() time.Time
}

var _ Cache = (*MemoryCache)(nil)

func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		store:      make(map[string]cacheItem),
		defaultTTL: defaultTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.store[key]
	if !ok || c.now().After(item.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(item.value, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.defaultTTL
	if ttlSecs > 0 {
		ttl = time.Duration(ttlSecs) * time.Second
	}
	now := c.now()
	for k, it := range c.store {
		if now.After(it.expiresAt) {
			delete(c.store, k)
		}
	}
	c.store[key] = cacheItem{value: data, expiresAt: now.Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}
