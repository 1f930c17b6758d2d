package mocks

import (
	"context"
	"encoding/json"
	"sync"

	sharedCache "github.com/davicafu/hexapaginate/internal/shared/infra/platform/cache"
)

// DummyCache es un mock de caché en memoria, seguro para concurrencia. Cuenta
// las operaciones y permite inyectar errores.
type DummyCache struct {
	store map[string][]byte // guardamos JSON, no un tipo concreto
	mu    sync.RWMutex

	GetErr error
	SetErr error
	Gets   int
	Sets   int
}

// Verificación estática para asegurar que implementa la interfaz compartida.
var _ sharedCache.Cache = (*DummyCache)(nil)

func NewDummyCache() *DummyCache {
	return &DummyCache{
		store: make(map[string][]byte),
	}
}

func (c *DummyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gets++
	if c.GetErr != nil {
		return false, c.GetErr
	}

	data, ok := c.store[key]
	if !ok {
		return false, nil // Cache miss
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil // Cache hit
}

func (c *DummyCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sets++
	if c.SetErr != nil {
		return c.SetErr
	}

	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.store[key] = data
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}
