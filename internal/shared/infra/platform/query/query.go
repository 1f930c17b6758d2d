package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ---------- Tipos de paginación / ordenamiento ----------

// OffsetPagination para paginación clásica. Limit 0 significa sin límite.
type OffsetPagination struct {
	Limit  int64
	Offset int64
}

// Sorter es una entrada de ordenamiento tal como llega del cliente,
// p. ej. {"property":"name","direction":"DESC"}.
type Sorter struct {
	Property  string      `json:"property"`
	Direction interface{} `json:"direction,omitempty"`
	Value     interface{} `json:"value,omitempty"` // alias aceptado cuando llega como triple
}

// Dir devuelve la dirección declarada, usando Value si Direction no vino.
func (s Sorter) Dir() interface{} {
	if s.Direction != nil {
		return s.Direction
	}
	return s.Value
}

// ParseSorters decodifica el array JSON de ordenamientos.
func ParseSorters(raw string) ([]Sorter, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var sorters []Sorter
	if err := json.Unmarshal([]byte(raw), &sorters); err != nil {
		return nil, fmt.Errorf("invalid sort encoding: %w", err)
	}
	for i, s := range sorters {
		if s.Property == "" {
			return nil, fmt.Errorf("invalid sort encoding: entry %d has no property", i)
		}
	}
	return sorters, nil
}
