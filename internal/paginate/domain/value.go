package domain

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// None es la entrada de los productores que no reciben nada.
type None = struct{}

type valueKind uint8

const (
	kindUnset valueKind = iota
	kindLiteral
	kindDeferred
	kindEncoded
)

var errNoDecoder = errors.New("encoded value without translator")

// Value es una opción que puede llegar como literal, como productor diferido
// (hay que ejecutarlo para conocer el valor) o codificada en una cadena externa
// que necesita traducción. I es la entrada que recibe el productor.
type Value[I, T any] struct {
	kind    valueKind
	literal T
	encoded string
	produce func(context.Context, I) (T, error)
}

func Literal[I, T any](v T) Value[I, T] {
	return Value[I, T]{kind: kindLiteral, literal: v}
}

// Deferred envuelve un productor. Un productor nil deja el valor sin definir.
func Deferred[I, T any](fn func(context.Context, I) (T, error)) Value[I, T] {
	if fn == nil {
		return Value[I, T]{}
	}
	return Value[I, T]{kind: kindDeferred, produce: fn}
}

func Encoded[I, T any](raw string) Value[I, T] {
	return Value[I, T]{kind: kindEncoded, encoded: raw}
}

func (v Value[I, T]) IsSet() bool { return v.kind != kindUnset }

// Literal devuelve el valor literal, si lo es.
func (v Value[I, T]) Literal() (T, bool) {
	return v.literal, v.kind == kindLiteral
}

// Encoded devuelve la cadena codificada, si lo es.
func (v Value[I, T]) Encoded() (string, bool) {
	return v.encoded, v.kind == kindEncoded
}

// Decoder lleva un valor no diferido (literal o codificado) a su forma final.
type Decoder[I, T any] func(ctx context.Context, v Value[I, T]) (T, error)

// Resolve concreta el valor: primero productor, luego traducción, luego literal.
func (v Value[I, T]) Resolve(ctx context.Context, in I, decode Decoder[I, T]) (T, error) {
	switch {
	case v.kind == kindDeferred:
		return v.produce(ctx, in)
	case decode != nil:
		return decode(ctx, v)
	case v.kind == kindEncoded:
		var zero T
		return zero, errNoDecoder
	default:
		return v.literal, nil
	}
}

// ---------------- Valores por opción ----------------

type (
	// LimitValue: el productor recibe maxLimit.
	LimitValue = Value[int, int]
	// PageValue: el productor recibe el límite ya resuelto.
	PageValue     = Value[int, int]
	SelectValue   = Value[None, bson.M]
	PopulateValue = Value[None, []Populate]
	SortValue     = Value[None, bson.D]
	CriteriaValue = Value[None, bson.M]
)

func Limit(n int) LimitValue { return Literal[int, int](n) }

func LimitFunc(fn func(ctx context.Context, maxLimit int) (int, error)) LimitValue {
	return Deferred[int, int](fn)
}

func Page(n int) PageValue { return Literal[int, int](n) }

func PageFunc(fn func(ctx context.Context, limit int) (int, error)) PageValue {
	return Deferred[int, int](fn)
}

func Select(projection bson.M) SelectValue { return Literal[None, bson.M](projection) }

// SelectFields acepta la sintaxis "name email -_id".
func SelectFields(fields string) SelectValue { return Select(ParseSelect(fields)) }

func SelectFunc(fn func(ctx context.Context) (bson.M, error)) SelectValue {
	if fn == nil {
		return SelectValue{}
	}
	return Deferred[None, bson.M](func(ctx context.Context, _ None) (bson.M, error) { return fn(ctx) })
}

func PopulateWith(specs ...Populate) PopulateValue {
	return Literal[None, []Populate](specs)
}

func PopulateFunc(fn func(ctx context.Context) ([]Populate, error)) PopulateValue {
	if fn == nil {
		return PopulateValue{}
	}
	return Deferred[None, []Populate](func(ctx context.Context, _ None) ([]Populate, error) { return fn(ctx) })
}

func Sort(order bson.D) SortValue { return Literal[None, bson.D](order) }

// SortJSON recibe el array codificado [{"property":"name","direction":"DESC"}].
func SortJSON(raw string) SortValue { return Encoded[None, bson.D](raw) }

func SortFunc(fn func(ctx context.Context) (bson.D, error)) SortValue {
	if fn == nil {
		return SortValue{}
	}
	return Deferred[None, bson.D](func(ctx context.Context, _ None) (bson.D, error) { return fn(ctx) })
}

func Criteria(filter bson.M) CriteriaValue { return Literal[None, bson.M](filter) }

// CriteriaJSON recibe el array codificado de triples {property, operator, value}.
func CriteriaJSON(raw string) CriteriaValue { return Encoded[None, bson.M](raw) }

func CriteriaFunc(fn func(ctx context.Context) (bson.M, error)) CriteriaValue {
	if fn == nil {
		return CriteriaValue{}
	}
	return Deferred[None, bson.M](func(ctx context.Context, _ None) (bson.M, error) { return fn(ctx) })
}
