package docutil

import (
	"bytes"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lookup resuelve una ruta con puntos ("address.city").
func Lookup(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := AsMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// AsMap acepta bson.M, map[string]any y bson.D.
func AsMap(v any) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return bson.M(m), true
	case bson.D:
		out := make(bson.M, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	default:
		return nil, false
	}
}

// AsSlice acepta bson.A, []any y cualquier slice que no sea []byte.
func AsSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case bson.A:
		return []any(s), true
	case []any:
		return s, true
	case []byte, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Compare ordena dos valores del mismo tipo. ok es false si no son comparables.
func Compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return cmp3(fa < fb, fa > fb), true
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		return cmp3(!x && y, x && !y), true
	case time.Time:
		y, ok := asTime(b)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case primitive.DateTime:
		y, ok := asTime(b)
		if !ok {
			return 0, false
		}
		return x.Time().Compare(y), true
	case primitive.ObjectID:
		y, ok := b.(primitive.ObjectID)
		if !ok {
			return 0, false
		}
		return bytes.Compare(x[:], y[:]), true
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	default:
		return time.Time{}, false
	}
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	default:
		return 0
	}
}

// typeRank reproduce el orden entre tipos de Mongo para poder ordenar
// documentos con campos heterogéneos.
func typeRank(v any) int {
	if v == nil {
		return 1
	}
	if _, ok := toFloat(v); ok {
		return 2
	}
	switch v.(type) {
	case string:
		return 3
	case bson.M, map[string]any, bson.D:
		return 4
	case primitive.ObjectID:
		return 7
	case bool:
		return 8
	case time.Time, primitive.DateTime:
		return 9
	case primitive.Regex:
		return 11
	}
	if _, ok := AsSlice(v); ok {
		return 5
	}
	return 6
}

// normalize deja mapas y listas en tipos comunes para compararlos.
func normalize(v any) any {
	if m, ok := AsMap(v); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = normalize(val)
		}
		return out
	}
	if items, ok := AsSlice(v); ok {
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = normalize(it)
		}
		return out
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return v
}

// Clone copia en profundidad mapas y listas, para devolver documentos
// desligados del almacén.
func Clone(doc bson.M) bson.M {
	if doc == nil {
		return nil
	}
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case bson.M:
		return Clone(x)
	case map[string]any:
		return map[string]any(Clone(bson.M(x)))
	case bson.A:
		out := make(bson.A, len(x))
		for i, it := range x {
			out[i] = cloneValue(it)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, it := range x {
			out[i] = cloneValue(it)
		}
		return out
	case bson.D:
		out := make(bson.D, len(x))
		for i, e := range x {
			out[i] = bson.E{Key: e.Key, Value: cloneValue(e.Value)}
		}
		return out
	default:
		return v
	}
}
