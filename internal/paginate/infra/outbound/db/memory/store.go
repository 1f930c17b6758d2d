// Package memory es un almacén de documentos en memoria. Sirve para tests y
// para arrancar el servicio sin base de datos.
package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/db/docutil"
)

// Store guarda documentos por colección. Es seguro para uso concurrente.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]bson.M
}

func NewStore() *Store {
	return &Store{docs: make(map[string][]bson.M)}
}

// Insert añade documentos a una colección en orden de inserción, que es el
// orden natural cuando no se pide ordenación.
func (s *Store) Insert(collection string, docs ...bson.M) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs[collection] = append(s.docs[collection], docutil.Clone(d))
	}
}

// Collection devuelve el DataSource de una colección.
func (s *Store) Collection(name string) *Collection {
	return &Collection{store: s, name: name}
}

func (s *Store) matching(name string, filter bson.M) ([]bson.M, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []bson.M
	for _, d := range s.docs[name] {
		ok, err := docutil.Match(d, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// Collection implementa domain.DataSource sobre una colección del Store.
type Collection struct {
	store *Store
	name  string
}

var _ domain.DataSource = (*Collection)(nil)

func (c *Collection) Count(ctx context.Context, filter bson.M) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	docs, err := c.store.matching(c.name, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Find filtra, ordena, pagina y proyecta. Los documentos devueltos son copias
// salvo con Lean a false sin proyección ni populate, en cuyo caso son los
// propios documentos del almacén.
func (c *Collection) Find(ctx context.Context, q domain.FindQuery) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, err := c.store.matching(c.name, q.Filter)
	if err != nil {
		return nil, err
	}
	if err := docutil.SortDocuments(docs, q.Sort); err != nil {
		return nil, err
	}

	docs = window(docs, q.Pagination.Offset, q.Pagination.Limit)

	live := !q.Lean && len(q.Projection) == 0 && len(q.Populate) == 0
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if live {
			out = append(out, d)
			continue
		}
		p, err := docutil.Project(docutil.Clone(d), q.Projection)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	if len(q.Populate) > 0 {
		if err := docutil.Populate(ctx, out, q.Populate, c.resolve); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Collection) resolve(ctx context.Context, from, field string, values []any) ([]bson.M, error) {
	docs, err := c.store.matching(from, bson.M{field: bson.M{"$in": bson.A(values)}})
	if err != nil {
		return nil, err
	}
	out := make([]bson.M, len(docs))
	for i, d := range docs {
		out[i] = docutil.Clone(d)
	}
	return out, nil
}

func window(docs []bson.M, offset, limit int64) []bson.M {
	if offset < 0 || offset >= int64(len(docs)) {
		return nil
	}
	docs = docs[offset:]
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}
