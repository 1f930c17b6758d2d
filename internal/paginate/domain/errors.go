package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration      = errors.New("invalid paginate configuration")
	ErrTranslation        = errors.New("paginate translation failed")
	ErrStore              = errors.New("paginate store failure")
	ErrUnknownProperty    = errors.New("unknown property")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrUnsupportedFilter  = errors.New("unsupported filter")
	ErrUnsupportedSort    = errors.New("unsupported sort")
)

// ConfigurationError indica que un hook (converter o wrapper) no resolvió a una función.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("option %s is not a function", e.Option)
	}
	return fmt.Sprintf("option %s is not a function: %s", e.Option, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// TranslationError envuelve un filtro u orden codificado que no se pudo traducir.
type TranslationError struct {
	Option string
	Err    error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate %s: %v", e.Option, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

func (e *TranslationError) Is(target error) bool {
	return target == ErrTranslation
}

// StoreError envuelve el fallo de count o find tal cual lo devolvió el DataSource.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}
