package domain

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Options son las opciones de una llamada. Los campos sin definir caen a los
// Defaults de la colección.
type Options struct {
	MaxLimit int // 0: sin definir; Unlimited: sin tope
	Limit    LimitValue
	Page     PageValue
	Lean     *bool
	Select   SelectValue
	Populate PopulateValue
	Sort     SortValue

	ConvertCriteria Hook[CriteriaConverter]
	ConvertSort     Hook[SortConverter]
	WrapCriteria    Hook[CriteriaWrapper]
}

// Defaults tiene la misma forma que Options; se adjunta una vez por colección.
type Defaults = Options

// Merged es el resultado de combinar Options sobre Defaults con los hooks ya
// validados. Aún puede contener productores y valores codificados.
type Merged struct {
	MaxLimit int
	Limit    LimitValue
	Page     PageValue
	Lean     bool
	Select   SelectValue
	Populate PopulateValue
	Sort     SortValue

	convertCriteria CriteriaConverter
	convertSort     SortConverter
	wrapCriteria    CriteriaWrapper
}

// ResolvedOptions no contiene ya productores ni cadenas: todo es literal.
type ResolvedOptions struct {
	MaxLimit       int
	RequestedLimit int // límite pedido tras resolver; 0 si no hubo
	Limit          int // límite efectivo; 0 significa sin tope
	Page           int
	Skip           int64
	Lean           bool
	Select         bson.M
	Populate       []Populate
	Sort           bson.D
	Criteria       bson.M
}

// Merge combina las opciones de la llamada sobre los defaults. Los hooks se
// validan aquí, de forma síncrona, antes de resolver ningún valor.
func Merge(call Options, defaults Defaults, hooks *HookRegistry) (Merged, error) {
	m := Merged{
		MaxLimit: firstInt(call.MaxLimit, defaults.MaxLimit, DefaultMaxLimit),
		Limit:    pickCount(call.Limit, defaults.Limit),
		Page:     pickCount(call.Page, defaults.Page),
		Lean:     firstBool(call.Lean, defaults.Lean, true),
		Select:   pick(call.Select, defaults.Select),
		Populate: pick(call.Populate, defaults.Populate),
		Sort:     pick(call.Sort, defaults.Sort),
	}
	if !m.Page.IsSet() {
		m.Page = Page(DefaultPage)
	}

	var err error
	m.convertSort = DefaultSortConverter
	if h := pickHook(call.ConvertSort, defaults.ConvertSort); h.IsSet() {
		if m.convertSort, err = h.resolve(OptionConvertSort, hooks.sortConverter); err != nil {
			return Merged{}, err
		}
	}

	m.convertCriteria = DefaultCriteriaConverter
	if h := pickHook(call.ConvertCriteria, defaults.ConvertCriteria); h.IsSet() {
		if m.convertCriteria, err = h.resolve(OptionConvertCriteria, hooks.criteriaConverter); err != nil {
			return Merged{}, err
		}
	}

	if h := pickHook(call.WrapCriteria, defaults.WrapCriteria); h.IsSet() {
		if m.wrapCriteria, err = h.resolve(OptionCriteriaWrapper, hooks.criteriaWrapper); err != nil {
			return Merged{}, err
		}
	}

	return m, nil
}

// Resolve concreta cada opción en orden: select, populate, limit, page, sort,
// criteria y wrapper. El primer error corta la cadena.
func (m Merged) Resolve(ctx context.Context, criteria CriteriaValue, schema Schema) (ResolvedOptions, error) {
	r := ResolvedOptions{MaxLimit: m.MaxLimit, Lean: m.Lean}
	var err error

	if r.Select, err = m.Select.Resolve(ctx, None{}, nil); err != nil {
		return r, resolveErr("select", err)
	}
	if r.Populate, err = m.Populate.Resolve(ctx, None{}, nil); err != nil {
		return r, resolveErr("populate", err)
	}

	requested, err := m.Limit.Resolve(ctx, m.MaxLimit, nil)
	if err != nil {
		return r, resolveErr("limit", err)
	}
	if requested < 0 {
		requested = 0
	}
	r.RequestedLimit = requested
	r.Limit = EffectiveLimit(requested, m.MaxLimit)

	page, err := m.Page.Resolve(ctx, r.Limit, nil)
	if err != nil {
		return r, resolveErr("page", err)
	}
	if page < DefaultPage {
		page = DefaultPage
	}
	r.Page = page

	r.Sort, err = m.Sort.Resolve(ctx, None{}, func(ctx context.Context, v SortValue) (bson.D, error) {
		return m.convertSort(ctx, v)
	})
	if err != nil {
		return r, resolveErr("sort", err)
	}

	r.Criteria, err = criteria.Resolve(ctx, None{}, func(ctx context.Context, v CriteriaValue) (bson.M, error) {
		return m.convertCriteria(ctx, v, schema)
	})
	if err != nil {
		return r, resolveErr("criteria", err)
	}
	if m.wrapCriteria != nil {
		if r.Criteria, err = m.wrapCriteria(ctx, r.Criteria); err != nil {
			return r, resolveErr("criteriaWrapper", err)
		}
	}
	if r.Criteria == nil {
		r.Criteria = bson.M{}
	}

	r.Skip = Skip(r.Page, r.Limit)
	return r, nil
}

func resolveErr(option string, err error) error {
	if errors.Is(err, errNoDecoder) {
		return &TranslationError{Option: option, Err: err}
	}
	var te *TranslationError
	if errors.As(err, &te) {
		return err
	}
	return fmt.Errorf("resolve %s: %w", option, err)
}

// ---------------- Helpers de combinación ----------------

func pick[I, T any](call, def Value[I, T]) Value[I, T] {
	if call.IsSet() {
		return call
	}
	return def
}

// pickCount trata un literal 0 como "sin definir".
func pickCount(call, def Value[int, int]) Value[int, int] {
	if countSet(call) {
		return call
	}
	if countSet(def) {
		return def
	}
	return Value[int, int]{}
}

func countSet(v Value[int, int]) bool {
	if n, ok := v.Literal(); ok {
		return n != 0
	}
	return v.IsSet()
}

func pickHook[F any](call, def Hook[F]) Hook[F] {
	if call.IsSet() {
		return call
	}
	return def
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstBool(call, def *bool, fallback bool) bool {
	if call != nil {
		return *call
	}
	if def != nil {
		return *def
	}
	return fallback
}
