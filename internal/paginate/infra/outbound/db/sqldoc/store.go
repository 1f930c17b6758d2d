// Package sqldoc guarda documentos JSON en una tabla SQL (SQLite o Postgres) y
// traduce los filtros y órdenes nativos a SQL.
package sqldoc

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/db/docutil"
)

type Store struct {
	db      *sql.DB
	dialect Dialect
}

func NewStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// InitSchema crea la tabla de documentos si no existe.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.DDL() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s schema: %w", s.dialect.Name(), err)
		}
	}
	return nil
}

// Insert añade documentos a una colección en una sola transacción.
func (s *Store) Insert(ctx context.Context, collection string, docs ...bson.M) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.dialect.InsertSQL())
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range docs {
		body, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, collection, string(body)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) Collection(name string) *Collection {
	return &Collection{store: s, name: name}
}

// Collection implementa domain.DataSource sobre una colección de la tabla.
type Collection struct {
	store *Store
	name  string
}

var _ domain.DataSource = (*Collection)(nil)

func (c *Collection) where(filter bson.M) (string, []any, error) {
	b := &builder{d: c.store.dialect}
	coll := b.bind(c.name)
	cond, err := b.filter(filter)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf(" WHERE collection = %s AND %s", coll, cond), b.args, nil
}

func (c *Collection) Count(ctx context.Context, filter bson.M) (int64, error) {
	where, args, err := c.where(filter)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := c.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents"+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Find pagina en SQL; la proyección y populate se aplican después en Go.
func (c *Collection) Find(ctx context.Context, q domain.FindQuery) ([]domain.Document, error) {
	where, args, err := c.where(q.Filter)
	if err != nil {
		return nil, err
	}
	order, err := orderBy(c.store.dialect, q.Sort)
	if err != nil {
		return nil, err
	}
	query := "SELECT body FROM documents" + where + order +
		c.store.dialect.Window(q.Pagination.Limit, q.Pagination.Offset)

	docs, err := c.query(ctx, query, args)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		p, err := docutil.Project(d, q.Projection)
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
	target := c.store.Collection(from)
	where, args, err := target.where(bson.M{field: bson.M{"$in": values}})
	if err != nil {
		return nil, err
	}
	return target.query(ctx, "SELECT body FROM documents"+where, args)
}

func (c *Collection) query(ctx context.Context, query string, args []any) ([]bson.M, error) {
	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []bson.M
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		doc, err := decode(body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// decode conserva los enteros como int64; el resto de números queda en float64.
func decode(body []byte) (bson.M, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid stored document: %w", err)
	}
	return fromJSON(raw).(bson.M), nil
}

func fromJSON(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(bson.M, len(x))
		for k, val := range x {
			m[k] = fromJSON(val)
		}
		return m
	case []any:
		a := make(bson.A, len(x))
		for i, val := range x {
			a[i] = fromJSON(val)
		}
		return a
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	default:
		return v
	}
}
