package sqldoc

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
)

// Dialect aísla lo que cambia entre motores: cómo se extrae un campo del JSON,
// cómo se enlazan parámetros y qué se sabe hacer con expresiones regulares.
type Dialect interface {
	Name() string
	DDL() []string
	InsertSQL() string
	Placeholder(n int) string
	// Scalar es la expresión comparable del campo.
	Scalar(path string) string
	// TypeOf es la expresión que devuelve el tipo JSON del campo (NULL si falta).
	TypeOf(path string) string
	// Types lista los tipos JSON compatibles con el valor de Go.
	Types(v any) []string
	Arg(v any) (any, error)
	CastArg(placeholder string) string
	// Regex devuelve el fragmento y el parámetro para un $regex.
	Regex(path, placeholder, pattern, options string) (string, any, error)
	Order(path string, dir int) string
	Window(limit, offset int64) string
}

var fieldPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z0-9_]+)*$`)

func validPath(path string) error {
	if !fieldPath.MatchString(path) {
		return fmt.Errorf("%w: invalid field path %q", domain.ErrUnsupportedFilter, path)
	}
	return nil
}

// ---------------- SQLite ----------------

// SQLite guarda el cuerpo como TEXT y lo consulta con las funciones json_*.
// No hay REGEXP nativo: sólo se aceptan patrones literales (con ^ y $), que se
// traducen a LIKE o GLOB.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) DDL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS documents (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			body TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection)`,
	}
}

func (SQLite) InsertSQL() string {
	return `INSERT INTO documents (collection, body) VALUES (?, ?)`
}

func (SQLite) Placeholder(int) string { return "?" }

func (SQLite) Scalar(path string) string {
	return fmt.Sprintf("json_extract(body, '$.%s')", path)
}

func (SQLite) TypeOf(path string) string {
	return fmt.Sprintf("json_type(body, '$.%s')", path)
}

func (SQLite) Types(v any) []string {
	switch v.(type) {
	case string, time.Time, primitive.ObjectID:
		return []string{"text"}
	case bool:
		return []string{"true", "false"}
	}
	if isNumber(v) {
		return []string{"integer", "real"}
	}
	return nil
}

func (SQLite) Arg(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	case primitive.ObjectID:
		return x.Hex(), nil
	case string:
		return x, nil
	}
	if n, ok := asNumber(v); ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: value of type %T", domain.ErrUnsupportedFilter, v)
}

func (SQLite) CastArg(placeholder string) string { return placeholder }

func (d SQLite) Regex(path, placeholder, pattern, options string) (string, any, error) {
	lit, start, end, ok := literalRegex(pattern)
	if !ok {
		return "", nil, fmt.Errorf("%w: sqlite only supports literal patterns, got %q", domain.ErrUnsupportedFilter, pattern)
	}
	guard := d.TypeOf(path) + " = 'text'"
	if strings.Contains(options, "i") {
		like := escapeLike(lit)
		if !start {
			like = "%" + like
		}
		if !end {
			like += "%"
		}
		return fmt.Sprintf(`(%s AND %s LIKE %s ESCAPE '\')`, guard, d.Scalar(path), placeholder), like, nil
	}
	glob := escapeGlob(lit)
	if !start {
		glob = "*" + glob
	}
	if !end {
		glob += "*"
	}
	return fmt.Sprintf("(%s AND %s GLOB %s)", guard, d.Scalar(path), placeholder), glob, nil
}

// Order: en SQLite los NULL van primero en ascendente y al final en
// descendente, igual que los campos ausentes en Mongo.
func (d SQLite) Order(path string, dir int) string {
	if dir < 0 {
		return d.Scalar(path) + " DESC"
	}
	return d.Scalar(path) + " ASC"
}

func (SQLite) Window(limit, offset int64) string {
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	case limit > 0:
		return fmt.Sprintf(" LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf(" LIMIT -1 OFFSET %d", offset)
	default:
		return ""
	}
}

// ---------------- Postgres ----------------

// Postgres guarda el cuerpo como JSONB y compara en JSONB, así números,
// cadenas y booleanos conservan su tipo.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) DDL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS documents (
			seq BIGSERIAL PRIMARY KEY,
			collection TEXT NOT NULL,
			body JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection)`,
	}
}

func (Postgres) InsertSQL() string {
	return `INSERT INTO documents (collection, body) VALUES ($1, $2::jsonb)`
}

func (Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func pgPath(path string) string {
	return "'{" + strings.ReplaceAll(path, ".", ",") + "}'"
}

func (Postgres) Scalar(path string) string {
	return "(body #> " + pgPath(path) + ")"
}

func (Postgres) TypeOf(path string) string {
	return "jsonb_typeof(body #> " + pgPath(path) + ")"
}

func (Postgres) Types(v any) []string {
	switch v.(type) {
	case string, time.Time, primitive.ObjectID:
		return []string{"string"}
	case bool:
		return []string{"boolean"}
	}
	if isNumber(v) {
		return []string{"number"}
	}
	return nil
}

func (Postgres) Arg(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		v = x.UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		v = x.Hex()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedFilter, err)
	}
	return string(b), nil
}

func (Postgres) CastArg(placeholder string) string { return placeholder + "::jsonb" }

func (d Postgres) Regex(path, placeholder, pattern, options string) (string, any, error) {
	op := "~"
	if strings.Contains(options, "i") {
		op = "~*"
	}
	return fmt.Sprintf("(%s = 'string' AND (body #>> %s) %s %s)", d.TypeOf(path), pgPath(path), op, placeholder), pattern, nil
}

func (d Postgres) Order(path string, dir int) string {
	if dir < 0 {
		return d.Scalar(path) + " DESC NULLS LAST"
	}
	return d.Scalar(path) + " ASC NULLS FIRST"
}

func (Postgres) Window(limit, offset int64) string {
	var b strings.Builder
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	if offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", offset)
	}
	return b.String()
}

// ---------------- Helpers ----------------

func isNumber(v any) bool {
	_, ok := asNumber(v)
	return ok
}

func asNumber(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return nil, false
	}
}

const regexMeta = `.+*?()[]{}|^$`

// literalRegex extrae el texto de un patrón sin metacaracteres, admitiendo
// escapes de puntuación y las anclas ^ y $.
func literalRegex(pattern string) (lit string, start, end bool, ok bool) {
	if strings.HasPrefix(pattern, "^") {
		start = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "$") && !strings.HasSuffix(pattern, `\$`) {
		end = true
		pattern = pattern[:len(pattern)-1]
	}
	var b strings.Builder
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			if !strings.ContainsRune(regexMeta+`\/-`, r) {
				return "", false, false, false
			}
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case strings.ContainsRune(regexMeta, r):
			return "", false, false, false
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		return "", false, false, false
	}
	return b.String(), start, end, true
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`[`, `[[]`, `*`, `[*]`, `?`, `[?]`)
	return r.Replace(s)
}
