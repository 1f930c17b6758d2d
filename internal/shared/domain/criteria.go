package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq   Operator = "eq"
	OpLike Operator = "like"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpIn   Operator = "in"
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado. Es el triple
// {property, operator, value} que envían los clientes (p. ej. ExtJS).
type Criterion struct {
	Field string      `json:"property"`
	Op    Operator    `json:"operator,omitempty"`
	Value interface{} `json:"value"`
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// Conditions es la implementación más simple: una lista ya construida.
type Conditions []Criterion

func (c Conditions) ToConditions() []Criterion {
	return c
}

// ---------------- Composite Criteria ----------------

type CompositeCriteria struct {
	Criterias []Criteria
}

func (c CompositeCriteria) ToConditions() []Criterion {
	var all []Criterion
	for _, crit := range c.Criterias {
		all = append(all, crit.ToConditions()...)
	}
	return all
}

// And combina varios criterios. Las condiciones se pliegan en orden.
func And(criterias ...Criteria) CompositeCriteria {
	return CompositeCriteria{Criterias: criterias}
}

// ---------------- Codificación externa ----------------

// Encode serializa los criterios al formato externo (array JSON de triples).
func Encode(c Criteria) (string, error) {
	conds := []Criterion{}
	if c != nil {
		conds = append(conds, c.ToConditions()...)
	}
	data, err := json.Marshal(conds)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseConditions decodifica el formato externo. Una cadena vacía equivale a
// "sin condiciones".
func ParseConditions(raw string) ([]Criterion, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var conds []Criterion
	if err := json.Unmarshal([]byte(raw), &conds); err != nil {
		return nil, fmt.Errorf("invalid filter encoding: %w", err)
	}
	for i, c := range conds {
		if c.Field == "" {
			return nil, fmt.Errorf("invalid filter encoding: entry %d has no property", i)
		}
	}
	return conds, nil
}
