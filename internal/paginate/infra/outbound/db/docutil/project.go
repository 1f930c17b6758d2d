package docutil

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
)

// Project aplica una proyección de primer nivel. Una proyección de inclusión
// conserva _id salvo que se excluya de forma explícita. Mezclar inclusiones y
// exclusiones (fuera de _id) es un error, igual que en Mongo.
func Project(doc bson.M, projection bson.M) (bson.M, error) {
	if len(projection) == 0 {
		return doc, nil
	}

	include, exclude := map[string]bool{}, map[string]bool{}
	for k, v := range projection {
		if truthy(v) {
			include[k] = true
		} else {
			exclude[k] = true
		}
	}
	onlyID := include["_id"] && len(include) == 1
	delete(include, "_id")
	if onlyID {
		out := bson.M{}
		if id, ok := doc["_id"]; ok {
			out["_id"] = id
		}
		return out, nil
	}
	if len(include) > 0 {
		for k := range exclude {
			if k != "_id" {
				return nil, fmt.Errorf("%w: cannot mix inclusion and exclusion (%s)", domain.ErrUnsupportedFilter, k)
			}
		}
	}

	out := bson.M{}
	if len(include) > 0 {
		if id, ok := doc["_id"]; ok && !exclude["_id"] {
			out["_id"] = id
		}
		for k := range include {
			if v, ok := doc[k]; ok {
				out[k] = v
			}
		}
		return out, nil
	}
	for k, v := range doc {
		if !exclude[k] {
			out[k] = v
		}
	}
	return out, nil
}

func truthy(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return v != nil
}

// Resolver busca en la colección from los documentos cuyo campo field está en
// values.
type Resolver func(ctx context.Context, from, field string, values []any) ([]bson.M, error)

// Populate sustituye cada referencia por el documento referenciado. Las
// referencias sin documento quedan en nil (una) o se omiten (lista).
func Populate(ctx context.Context, docs []bson.M, specs []domain.Populate, resolve Resolver) error {
	for _, pop := range specs {
		if pop.Path == "" || pop.From == "" {
			return fmt.Errorf("%w: populate needs path and from", domain.ErrUnsupportedFilter)
		}

		var refs []any
		for _, d := range docs {
			refs = append(refs, refsOf(d[pop.Path])...)
		}
		if len(refs) == 0 {
			continue
		}

		found, err := resolve(ctx, pop.From, pop.Foreign(), refs)
		if err != nil {
			return err
		}

		byKey := make(map[string]bson.M, len(found))
		for _, f := range found {
			key, _ := Lookup(f, pop.Foreign())
			p, err := Project(f, pop.Select)
			if err != nil {
				return err
			}
			byKey[refKey(key)] = p
		}

		for _, d := range docs {
			raw, ok := d[pop.Path]
			if !ok {
				continue
			}
			if _, isList := AsSlice(raw); isList || pop.Many {
				list := bson.A{}
				for _, it := range refsOf(raw) {
					if f, ok := byKey[refKey(it)]; ok {
						list = append(list, f)
					}
				}
				d[pop.Path] = list
				continue
			}
			if f, ok := byKey[refKey(raw)]; ok {
				d[pop.Path] = f
			} else {
				d[pop.Path] = nil
			}
		}
	}
	return nil
}

func refsOf(v any) []any {
	if v == nil {
		return nil
	}
	if items, ok := AsSlice(v); ok {
		return items
	}
	return []any{v}
}

// refKey iguala referencias numéricas de distinto tipo (int32 frente a int64).
func refKey(v any) string {
	if f, ok := toFloat(v); ok {
		return fmt.Sprintf("n:%v", f)
	}
	return fmt.Sprintf("%T:%v", v, v)
}
