package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
)

// Registry indexa las colecciones adjuntas por nombre.
type Registry struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

func NewRegistry() *Registry {
	return &Registry{collections: make(map[string]*Collection)}
}

// Register añade una colección. Un nombre repetido es un error de arranque.
func (r *Registry) Register(c *Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[c.Name()]; ok {
		return fmt.Errorf("collection %q already attached", c.Name())
	}
	r.collections[c.Name()] = c
	return nil
}

func (r *Registry) Get(name string) (*Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return c, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.collections))
	for n := range r.collections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ---------------- Estadísticas ----------------

// MultiRecorder reparte cada entrada entre varios recorders, en orden.
type MultiRecorder []domain.StatsRecorder

func (m MultiRecorder) Record(ctx context.Context, stats domain.PageStats) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, stats); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ domain.StatsRecorder = MultiRecorder(nil)
