package domain

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Document es un documento plano tal como lo devuelve el almacén.
type Document = bson.M

// Populate describe cómo resolver una referencia en línea: el valor de Path se
// busca en la colección From por ForeignField (por defecto "_id").
type Populate struct {
	Path         string
	From         string
	ForeignField string
	Many         bool   // Path contiene una lista de referencias
	Select       bson.M // proyección de los documentos referenciados
}

func (p Populate) Foreign() string {
	if p.ForeignField == "" {
		return "_id"
	}
	return p.ForeignField
}

// ParseSelect convierte "name email -_id" en una proyección bson.
func ParseSelect(fields string) bson.M {
	proj := bson.M{}
	for _, p := range strings.Fields(strings.ReplaceAll(fields, ",", " ")) {
		name, include := p, 1
		switch {
		case strings.HasPrefix(p, "-"):
			name, include = p[1:], 0
		case strings.HasPrefix(p, "+"):
			name = p[1:]
		}
		// un signo suelto no nombra ningún campo
		if name == "" {
			continue
		}
		proj[name] = include
	}
	if len(proj) == 0 {
		return nil
	}
	return proj
}
