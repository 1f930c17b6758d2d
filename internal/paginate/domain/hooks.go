package domain

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// CriteriaConverter traduce el criterio literal o codificado a un predicado nativo.
type CriteriaConverter func(ctx context.Context, in CriteriaValue, schema Schema) (bson.M, error)

// SortConverter traduce el orden literal o codificado a un orden nativo.
type SortConverter func(ctx context.Context, in SortValue) (bson.D, error)

// CriteriaWrapper transforma el criterio ya traducido, antes del count.
type CriteriaWrapper func(ctx context.Context, criteria bson.M) (bson.M, error)

// Nombres de las opciones, usados en los errores de configuración.
const (
	OptionConvertCriteria = "convertCriteria"
	OptionConvertSort     = "convertSorters"
	OptionCriteriaWrapper = "criteriaWrapper"
)

// Hook referencia una función de extensión, directamente o por nombre registrado.
type Hook[F any] struct {
	fn   F
	name string
	set  bool
}

func (h Hook[F]) IsSet() bool { return h.set }

func (h Hook[F]) resolve(option string, lookup func(string) (F, bool)) (F, error) {
	fn := h.fn
	if h.name != "" {
		named, ok := lookup(h.name)
		if !ok {
			return fn, &ConfigurationError{Option: option, Reason: fmt.Sprintf("no hook registered as %q", h.name)}
		}
		fn = named
	}
	if isNilFunc(fn) {
		return fn, &ConfigurationError{Option: option}
	}
	return fn, nil
}

func isNilFunc(fn any) bool {
	v := reflect.ValueOf(fn)
	return !v.IsValid() || v.Kind() != reflect.Func || v.IsNil()
}

func UseCriteriaConverter(fn CriteriaConverter) Hook[CriteriaConverter] {
	return Hook[CriteriaConverter]{fn: fn, set: true}
}

func UseSortConverter(fn SortConverter) Hook[SortConverter] {
	return Hook[SortConverter]{fn: fn, set: true}
}

func UseCriteriaWrapper(fn CriteriaWrapper) Hook[CriteriaWrapper] {
	return Hook[CriteriaWrapper]{fn: fn, set: true}
}

func NamedCriteriaConverter(name string) Hook[CriteriaConverter] {
	return Hook[CriteriaConverter]{name: name, set: true}
}

func NamedSortConverter(name string) Hook[SortConverter] {
	return Hook[SortConverter]{name: name, set: true}
}

func NamedCriteriaWrapper(name string) Hook[CriteriaWrapper] {
	return Hook[CriteriaWrapper]{name: name, set: true}
}

// ---------------- Registro de hooks ----------------

// HookRegistry guarda converters y wrappers por nombre, para poder elegirlos
// desde configuración. Se rellena en el arranque.
type HookRegistry struct {
	mu                 sync.RWMutex
	criteriaConverters map[string]CriteriaConverter
	sortConverters     map[string]SortConverter
	criteriaWrappers   map[string]CriteriaWrapper
}

// NewHookRegistry crea un registro con los converters incluidos:
// "default" (criterio y orden) y "strict" (criterio).
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		criteriaConverters: map[string]CriteriaConverter{
			"default": DefaultCriteriaConverter,
			"strict":  StrictCriteriaConverter,
		},
		sortConverters: map[string]SortConverter{
			"default": DefaultSortConverter,
		},
		criteriaWrappers: map[string]CriteriaWrapper{},
	}
}

func (r *HookRegistry) RegisterCriteriaConverter(name string, fn CriteriaConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.criteriaConverters[name] = fn
}

func (r *HookRegistry) RegisterSortConverter(name string, fn SortConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sortConverters[name] = fn
}

func (r *HookRegistry) RegisterCriteriaWrapper(name string, fn CriteriaWrapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.criteriaWrappers[name] = fn
}

func (r *HookRegistry) criteriaConverter(name string) (CriteriaConverter, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.criteriaConverters[name]
	return fn, ok
}

func (r *HookRegistry) sortConverter(name string) (SortConverter, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.sortConverters[name]
	return fn, ok
}

func (r *HookRegistry) criteriaWrapper(name string) (CriteriaWrapper, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.criteriaWrappers[name]
	return fn, ok
}
