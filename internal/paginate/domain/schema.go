package domain

import (
	"reflect"
	"strings"
	"time"
)

// Schema expone los campos conocidos de una colección. El traductor de
// criterios por defecto descarta las propiedades que no estén aquí.
type Schema interface {
	HasField(name string) bool
}

// FieldSet es un Schema estático. "_id" siempre se considera conocido.
type FieldSet map[string]struct{}

func Fields(names ...string) FieldSet {
	s := FieldSet{"_id": {}}
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// HasField acepta el campo exacto o cualquier subruta de un campo conocido
// ("address.city" si "address" existe).
func (s FieldSet) HasField(name string) bool {
	if _, ok := s[name]; ok {
		return true
	}
	for i := strings.LastIndexByte(name, '.'); i > 0; i = strings.LastIndexByte(name[:i], '.') {
		if _, ok := s[name[:i]]; ok {
			return true
		}
	}
	return false
}

// SchemaOf deriva el schema de las etiquetas bson de un struct. Los structs
// anidados aportan rutas con punto.
func SchemaOf(v any) FieldSet {
	s := Fields()
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return s
	}
	collectFields(s, t, "")
	return s
}

var timeType = reflect.TypeOf(time.Time{})

func collectFields(s FieldSet, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, inline, skip := bsonName(f)
		if skip {
			continue
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if inline && ft.Kind() == reflect.Struct {
			collectFields(s, ft, prefix)
			continue
		}

		path := prefix + name
		s[path] = struct{}{}
		if ft.Kind() == reflect.Struct && ft != timeType {
			collectFields(s, ft, path+".")
		}
	}
}

func bsonName(f reflect.StructField) (name string, inline, skip bool) {
	tag := f.Tag.Get("bson")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "inline" {
			inline = true
		}
	}
	if name == "" {
		// mismo criterio que el driver: nombre del campo en minúsculas
		name = strings.ToLower(f.Name)
	}
	return name, inline, false
}
