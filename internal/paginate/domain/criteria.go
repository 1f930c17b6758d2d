package domain

import (
	"context"
	"fmt"

	shared "github.com/davicafu/hexapaginate/internal/shared/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultCriteriaConverter deja pasar el predicado nativo y traduce el
// codificado. Las propiedades que el schema no conoce se descartan.
func DefaultCriteriaConverter(ctx context.Context, in CriteriaValue, schema Schema) (bson.M, error) {
	return convertCriteria(in, schema, false)
}

// StrictCriteriaConverter es igual que el de por defecto, pero una propiedad
// desconocida es un error de traducción.
func StrictCriteriaConverter(ctx context.Context, in CriteriaValue, schema Schema) (bson.M, error) {
	return convertCriteria(in, schema, true)
}

func convertCriteria(in CriteriaValue, schema Schema, strict bool) (bson.M, error) {
	raw, ok := in.Encoded()
	if !ok {
		filter, _ := in.Literal()
		return filter, nil
	}

	conds, err := shared.ParseConditions(raw)
	if err != nil {
		return nil, &TranslationError{Option: "criteria", Err: err}
	}
	filter, err := BuildFilter(conds, schema, strict)
	if err != nil {
		return nil, &TranslationError{Option: "criteria", Err: err}
	}
	return filter, nil
}

// BuildFilter pliega las condiciones de izquierda a derecha sobre un bson.M.
// Las cotas lt/gt y lte/gte de una misma propiedad se combinan en un rango;
// cualquier otra repetición sobrescribe.
func BuildFilter(conds []shared.Criterion, schema Schema, strict bool) (bson.M, error) {
	filter := bson.M{}
	for _, c := range conds {
		if schema != nil && !schema.HasField(c.Field) {
			if strict {
				return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, c.Field)
			}
			continue
		}

		switch c.Op {
		case shared.OpLike:
			filter[c.Field] = primitive.Regex{Pattern: likePattern(c.Value), Options: "i"}
		case shared.OpLt:
			filter[c.Field] = rangeBound(filter[c.Field], "$lt", "$gt", c.Value)
		case shared.OpGt:
			filter[c.Field] = rangeBound(filter[c.Field], "$gt", "$lt", c.Value)
		case shared.OpLte:
			filter[c.Field] = rangeBound(filter[c.Field], "$lte", "$gte", c.Value)
		case shared.OpGte:
			filter[c.Field] = rangeBound(filter[c.Field], "$gte", "$lte", c.Value)
		case shared.OpIn:
			filter[c.Field] = bson.M{"$in": c.Value}
		default:
			filter[c.Field] = c.Value
		}
	}
	return filter, nil
}

// rangeBound sólo combina con la cota complementaria; si no existe, la
// condición previa se reemplaza.
func rangeBound(existing any, op, complement string, value any) bson.M {
	if cur, ok := existing.(bson.M); ok {
		if other, has := cur[complement]; has {
			return bson.M{op: value, complement: other}
		}
	}
	return bson.M{op: value}
}

func likePattern(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
