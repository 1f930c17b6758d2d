package sqldoc

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/db/docutil"
)

// builder traduce un filtro bson a SQL acumulando los parámetros en orden.
// Las claves se recorren ordenadas para que la consulta sea determinista.
type builder struct {
	d    Dialect
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

func (b *builder) filter(f bson.M) (string, error) {
	if len(f) == 0 {
		return "1=1", nil
	}
	parts := make([]string, 0, len(f))
	for _, key := range sortedKeys(f) {
		frag, err := b.clause(key, f[key])
		if err != nil {
			return "", err
		}
		parts = append(parts, frag)
	}
	return strings.Join(parts, " AND "), nil
}

func (b *builder) clause(key string, cond any) (string, error) {
	switch key {
	case "$and":
		return b.logical(cond, " AND ")
	case "$or":
		return b.logical(cond, " OR ")
	}
	if strings.HasPrefix(key, "$") {
		return "", fmt.Errorf("%w: operator %s", domain.ErrUnsupportedFilter, key)
	}
	if err := validPath(key); err != nil {
		return "", err
	}

	if re, ok := cond.(primitive.Regex); ok {
		return b.regex(key, re.Pattern, re.Options)
	}
	ops, ok := docutil.AsMap(cond)
	if !ok || !isOperatorDoc(ops) {
		return b.eq(key, cond)
	}

	parts := make([]string, 0, len(ops))
	for _, op := range sortedKeys(ops) {
		arg := ops[op]
		var (
			frag string
			err  error
		)
		switch op {
		case "$eq":
			frag, err = b.eq(key, arg)
		case "$ne":
			frag, err = b.eq(key, arg)
			frag = b.missingOrNot(key, frag)
		case "$gt":
			frag, err = b.compare(key, ">", arg)
		case "$gte":
			frag, err = b.compare(key, ">=", arg)
		case "$lt":
			frag, err = b.compare(key, "<", arg)
		case "$lte":
			frag, err = b.compare(key, "<=", arg)
		case "$in":
			frag, err = b.in(key, arg)
		case "$nin":
			frag, err = b.in(key, arg)
			frag = b.missingOrNot(key, frag)
		case "$regex":
			frag, err = b.regexArg(key, arg, ops["$options"])
		case "$options":
			continue
		case "$exists":
			want, _ := arg.(bool)
			if want {
				frag = b.d.TypeOf(key) + " IS NOT NULL"
			} else {
				frag = b.d.TypeOf(key) + " IS NULL"
			}
		default:
			err = fmt.Errorf("%w: operator %s", domain.ErrUnsupportedFilter, op)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, frag)
	}
	return "(" + strings.Join(parts, " AND ") + ")", nil
}

func (b *builder) logical(cond any, sep string) (string, error) {
	items, ok := docutil.AsSlice(cond)
	if !ok || len(items) == 0 {
		return "", fmt.Errorf("%w: $and/$or expects a non-empty array", domain.ErrUnsupportedFilter)
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		sub, ok := docutil.AsMap(it)
		if !ok {
			return "", fmt.Errorf("%w: $and/$or expects documents", domain.ErrUnsupportedFilter)
		}
		frag, err := b.filter(sub)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+frag+")")
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// eq con nil coincide con campos ausentes o nulos.
func (b *builder) eq(path string, v any) (string, error) {
	if v == nil {
		t := b.d.TypeOf(path)
		return fmt.Sprintf("(%s IS NULL OR %s = 'null')", t, t), nil
	}
	return b.compare(path, "=", v)
}

func (b *builder) compare(path, op string, v any) (string, error) {
	types := b.d.Types(v)
	if len(types) == 0 {
		return "", fmt.Errorf("%w: cannot compare %s with %T", domain.ErrUnsupportedFilter, path, v)
	}
	arg, err := b.d.Arg(v)
	if err != nil {
		return "", err
	}
	quoted := make([]string, len(types))
	for i, t := range types {
		quoted[i] = "'" + t + "'"
	}
	return fmt.Sprintf("(%s IN (%s) AND %s %s %s)",
		b.d.TypeOf(path), strings.Join(quoted, ", "),
		b.d.Scalar(path), op, b.d.CastArg(b.bind(arg)),
	), nil
}

func (b *builder) in(path string, arg any) (string, error) {
	items, ok := docutil.AsSlice(arg)
	if !ok {
		return "", fmt.Errorf("%w: $in needs an array", domain.ErrUnsupportedFilter)
	}
	if len(items) == 0 {
		return "1=0", nil
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		var (
			frag string
			err  error
		)
		if re, ok := it.(primitive.Regex); ok {
			frag, err = b.regex(path, re.Pattern, re.Options)
		} else {
			frag, err = b.eq(path, it)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, frag)
	}
	return "(" + strings.Join(parts, " OR ") + ")", nil
}

func (b *builder) missingOrNot(path, frag string) string {
	return fmt.Sprintf("(%s IS NULL OR NOT %s)", b.d.TypeOf(path), frag)
}

func (b *builder) regexArg(path string, arg, options any) (string, error) {
	opts, _ := options.(string)
	switch re := arg.(type) {
	case string:
		return b.regex(path, re, opts)
	case primitive.Regex:
		if opts == "" {
			opts = re.Options
		}
		return b.regex(path, re.Pattern, opts)
	default:
		return "", fmt.Errorf("%w: $regex needs a string", domain.ErrUnsupportedFilter)
	}
}

func (b *builder) regex(path, pattern, options string) (string, error) {
	// El placeholder se reserva antes para mantener el orden de los parámetros.
	b.args = append(b.args, nil)
	idx := len(b.args) - 1
	frag, arg, err := b.d.Regex(path, b.d.Placeholder(len(b.args)), pattern, options)
	if err != nil {
		return "", err
	}
	b.args[idx] = arg
	return frag, nil
}

// orderBy traduce el orden; seq desempata y da el orden natural.
func orderBy(d Dialect, order bson.D) (string, error) {
	parts := make([]string, 0, len(order)+1)
	for _, e := range order {
		if err := validPath(e.Key); err != nil {
			return "", err
		}
		dir, ok := docutil.Direction(e.Value)
		if !ok {
			return "", fmt.Errorf("%w: %s=%v", domain.ErrUnsupportedSort, e.Key, e.Value)
		}
		parts = append(parts, d.Order(e.Key, dir))
	}
	parts = append(parts, "seq ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
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

func sortedKeys(m bson.M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
