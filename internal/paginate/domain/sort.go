package domain

import (
	"context"
	"math"
	"strings"

	sharedQuery "github.com/davicafu/hexapaginate/internal/shared/infra/platform/query"
	"go.mongodb.org/mongo-driver/bson"
)

// DefaultSortConverter deja pasar el orden nativo y traduce el codificado.
// Las propiedades no se validan contra el schema.
func DefaultSortConverter(ctx context.Context, in SortValue) (bson.D, error) {
	raw, ok := in.Encoded()
	if !ok {
		order, _ := in.Literal()
		return order, nil
	}

	sorters, err := sharedQuery.ParseSorters(raw)
	if err != nil {
		return nil, &TranslationError{Option: "sort", Err: err}
	}
	return BuildSort(sorters), nil
}

// BuildSort convierte los ordenamientos en un bson.D. Una propiedad repetida
// conserva su posición y se queda con la última dirección.
func BuildSort(sorters []sharedQuery.Sorter) bson.D {
	if len(sorters) == 0 {
		return nil
	}
	order := make(bson.D, 0, len(sorters))
	for _, s := range sorters {
		dir := NormalizeDirection(s.Dir())
		replaced := false
		for i := range order {
			if order[i].Key == s.Property {
				order[i].Value = dir
				replaced = true
				break
			}
		}
		if !replaced {
			order = append(order, bson.E{Key: s.Property, Value: dir})
		}
	}
	return order
}

// NormalizeDirection: enteros con signo y "asc"/"ascending"/"desc"/"descending"
// (sin distinguir mayúsculas). Lo que no se reconoce pasa tal cual; la
// ausencia de dirección es ascendente.
func NormalizeDirection(v any) any {
	switch d := v.(type) {
	case nil:
		return 1
	case float64:
		if d == math.Trunc(d) {
			return int(d)
		}
		return d
	case int:
		return d
	case int32:
		return int(d)
	case int64:
		return int(d)
	case string:
		switch strings.ToLower(strings.TrimSpace(d)) {
		case "asc", "ascending":
			return 1
		case "desc", "descending":
			return -1
		}
		return d
	default:
		return v
	}
}
