// en internal/paginate/infra/outbound/db/mongodb/store.go
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
)

// Store da acceso a las colecciones de una base de datos MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore comprueba la conexión antes de devolver el almacén.
func NewStore(ctx context.Context, client *mongo.Client, dbName string) (*Store, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) Collection(name string) *Collection {
	return &Collection{coll: s.db.Collection(name)}
}

// Insert se usa para sembrar datos en tests de integración.
func (s *Store) Insert(ctx context.Context, collection string, docs ...bson.M) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]interface{}, len(docs))
	for i, d := range docs {
		items[i] = d
	}
	_, err := s.db.Collection(collection).InsertMany(ctx, items)
	return err
}

// Collection implementa domain.DataSource. El filtro y el orden ya vienen en
// forma nativa, así que se pasan tal cual al driver.
type Collection struct {
	coll *mongo.Collection
}

var _ domain.DataSource = (*Collection)(nil)

func (c *Collection) Count(ctx context.Context, filter bson.M) (int64, error) {
	return c.coll.CountDocuments(ctx, nonNil(filter))
}

func (c *Collection) Find(ctx context.Context, q domain.FindQuery) ([]domain.Document, error) {
	if len(q.Populate) > 0 {
		return c.aggregate(ctx, q)
	}

	opts := options.Find()
	// Paginación
	if q.Pagination.Offset > 0 {
		opts.SetSkip(q.Pagination.Offset)
	}
	if q.Pagination.Limit > 0 {
		opts.SetLimit(q.Pagination.Limit)
	}
	// Ordenamiento: sin orden se respeta el natural
	if len(q.Sort) > 0 {
		opts.SetSort(q.Sort)
	}
	if len(q.Projection) > 0 {
		opts.SetProjection(q.Projection)
	}

	cursor, err := c.coll.Find(ctx, nonNil(q.Filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeAll(ctx, cursor)
}

// aggregate resuelve populate con $lookup en la misma consulta.
func (c *Collection) aggregate(ctx context.Context, q domain.FindQuery) ([]domain.Document, error) {
	cursor, err := c.coll.Aggregate(ctx, pipeline(q))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeAll(ctx, cursor)
}

func pipeline(q domain.FindQuery) mongo.Pipeline {
	p := mongo.Pipeline{{{Key: "$match", Value: nonNil(q.Filter)}}}
	if len(q.Sort) > 0 {
		p = append(p, bson.D{{Key: "$sort", Value: q.Sort}})
	}
	if q.Pagination.Offset > 0 {
		p = append(p, bson.D{{Key: "$skip", Value: q.Pagination.Offset}})
	}
	if q.Pagination.Limit > 0 {
		p = append(p, bson.D{{Key: "$limit", Value: q.Pagination.Limit}})
	}
	for _, pop := range q.Populate {
		lookup := bson.M{
			"from":         pop.From,
			"localField":   pop.Path,
			"foreignField": pop.Foreign(),
			"as":           pop.Path,
		}
		if len(pop.Select) > 0 {
			lookup["pipeline"] = bson.A{bson.M{"$project": pop.Select}}
		}
		p = append(p, bson.D{{Key: "$lookup", Value: lookup}})
		if !pop.Many {
			p = append(p, bson.D{{Key: "$unwind", Value: bson.M{
				"path":                       "$" + pop.Path,
				"preserveNullAndEmptyArrays": true,
			}}})
		}
	}
	if len(q.Projection) > 0 {
		p = append(p, bson.D{{Key: "$project", Value: q.Projection}})
	}
	return p
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]domain.Document, error) {
	var docs []domain.Document
	for cursor.Next(ctx) {
		var d bson.M
		if err := cursor.Decode(&d); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func nonNil(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}
