// Package docutil evalúa filtros, órdenes, proyecciones y populate sobre
// documentos en memoria, para los almacenes que no lo hacen de forma nativa.
package docutil

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
)

// Match indica si el documento cumple el filtro. Operadores soportados:
// $eq $ne $gt $gte $lt $lte $in $nin $regex $exists $and $or.
func Match(doc bson.M, filter bson.M) (bool, error) {
	for key, cond := range filter {
		var (
			ok  bool
			err error
		)
		switch key {
		case "$and":
			ok, err = matchAll(doc, cond)
		case "$or":
			ok, err = matchAny(doc, cond)
		default:
			if strings.HasPrefix(key, "$") {
				return false, fmt.Errorf("%w: operator %s", domain.ErrUnsupportedFilter, key)
			}
			val, present := Lookup(doc, key)
			ok, err = matchField(val, present, cond)
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchAll(doc bson.M, cond any) (bool, error) {
	subs, err := subFilters(cond)
	if err != nil {
		return false, err
	}
	for _, f := range subs {
		ok, err := Match(doc, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchAny(doc bson.M, cond any) (bool, error) {
	subs, err := subFilters(cond)
	if err != nil {
		return false, err
	}
	for _, f := range subs {
		ok, err := Match(doc, f)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func subFilters(cond any) ([]bson.M, error) {
	items, ok := AsSlice(cond)
	if !ok {
		return nil, fmt.Errorf("%w: $and/$or expects an array", domain.ErrUnsupportedFilter)
	}
	out := make([]bson.M, 0, len(items))
	for _, it := range items {
		m, ok := AsMap(it)
		if !ok {
			return nil, fmt.Errorf("%w: $and/$or expects documents", domain.ErrUnsupportedFilter)
		}
		out = append(out, m)
	}
	return out, nil
}

func matchField(val any, present bool, cond any) (bool, error) {
	switch c := cond.(type) {
	case primitive.Regex:
		return matchRegex(val, c.Pattern, c.Options)
	case *regexp.Regexp:
		s, ok := val.(string)
		return ok && c.MatchString(s), nil
	}

	ops, ok := AsMap(cond)
	if !ok || !isOperatorDoc(ops) {
		return equals(val, cond), nil
	}

	for op, arg := range ops {
		var (
			ok  bool
			err error
		)
		switch op {
		case "$eq":
			ok = equals(val, arg)
		case "$ne":
			ok = !equals(val, arg)
		case "$gt", "$gte", "$lt", "$lte":
			ok = compareOp(val, op, arg)
		case "$in":
			ok, err = in(val, arg)
		case "$nin":
			ok, err = in(val, arg)
			ok = !ok
		case "$regex":
			ok, err = matchRegexArg(val, arg, ops["$options"])
		case "$options":
			ok = true
		case "$exists":
			want, _ := arg.(bool)
			ok = present == want
		default:
			err = fmt.Errorf("%w: operator %s", domain.ErrUnsupportedFilter, op)
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func isOperatorDoc(m bson.M) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

// equals sigue la semántica de Mongo: si el campo es una lista basta con que
// uno de sus elementos sea igual.
func equals(val, want any) bool {
	if valuesEqual(val, want) {
		return true
	}
	if items, ok := AsSlice(val); ok {
		for _, it := range items {
			if valuesEqual(it, want) {
				return true
			}
		}
	}
	return false
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if c, ok := Compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func compareOp(val any, op string, arg any) bool {
	candidates := []any{val}
	if items, ok := AsSlice(val); ok {
		candidates = items
	}
	for _, v := range candidates {
		c, ok := Compare(v, arg)
		if !ok {
			continue
		}
		switch op {
		case "$gt":
			if c > 0 {
				return true
			}
		case "$gte":
			if c >= 0 {
				return true
			}
		case "$lt":
			if c < 0 {
				return true
			}
		case "$lte":
			if c <= 0 {
				return true
			}
		}
	}
	return false
}

func in(val, arg any) (bool, error) {
	items, ok := AsSlice(arg)
	if !ok {
		return false, fmt.Errorf("%w: $in needs an array", domain.ErrUnsupportedFilter)
	}
	for _, it := range items {
		if re, ok := it.(primitive.Regex); ok {
			if m, _ := matchRegex(val, re.Pattern, re.Options); m {
				return true, nil
			}
			continue
		}
		if equals(val, it) {
			return true, nil
		}
	}
	return false, nil
}

func matchRegexArg(val, arg, options any) (bool, error) {
	opts, _ := options.(string)
	switch re := arg.(type) {
	case string:
		return matchRegex(val, re, opts)
	case primitive.Regex:
		if opts == "" {
			opts = re.Options
		}
		return matchRegex(val, re.Pattern, opts)
	default:
		return false, fmt.Errorf("%w: $regex needs a string", domain.ErrUnsupportedFilter)
	}
}

func matchRegex(val any, pattern, options string) (bool, error) {
	re, err := CompileRegex(pattern, options)
	if err != nil {
		return false, err
	}
	if s, ok := val.(string); ok {
		return re.MatchString(s), nil
	}
	if items, ok := AsSlice(val); ok {
		for _, it := range items {
			if s, ok := it.(string); ok && re.MatchString(s) {
				return true, nil
			}
		}
	}
	return false, nil
}

// CompileRegex traduce las opciones de Mongo (i, m, s) a flags de Go.
func CompileRegex(pattern, options string) (*regexp.Regexp, error) {
	flags := ""
	for _, o := range options {
		switch o {
		case 'i', 'm', 's':
			flags += string(o)
		}
	}
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedFilter, err)
	}
	return re, nil
}
