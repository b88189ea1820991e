package docs

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/spec"

	"github.com/simp-lee/flyingpig/internal/pkg"
)

var timeType = reflect.TypeOf(time.Time{})

// schemas turns Go types into Swagger schemas. Named structs become
// definitions referenced by $ref.
type schemas struct {
	defs spec.Definitions
}

func newSchemas() *schemas {
	return &schemas{defs: spec.Definitions{}}
}

func (s *schemas) of(v any) *spec.Schema {
	if v == nil {
		return nil
	}
	return s.schemaFor(reflect.TypeOf(v))
}

func (s *schemas) schemaFor(t reflect.Type) *spec.Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return spec.DateTimeProperty()
	}
	if format, ok := primitive(t); ok {
		return new(spec.Schema).Typed(format[0], format[1])
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return spec.StringProperty().Typed("string", "byte")
		}
		return spec.ArrayProperty(s.schemaFor(t.Elem()))
	case reflect.Map:
		return spec.MapProperty(s.schemaFor(t.Elem()))
	case reflect.Struct:
		if t.Name() == "" {
			return s.object(t)
		}
		name := definitionName(t)
		if _, ok := s.defs[name]; !ok {
			// Reserve the name first so recursive types terminate.
			s.defs[name] = spec.Schema{}
			s.defs[name] = *s.object(t)
		}
		return spec.RefSchema("#/definitions/" + name)
	default:
		return new(spec.Schema)
	}
}

// object builds an inline object schema from the exported fields of t.
// Embedded structs without a json name contribute their fields directly.
func (s *schemas) object(t reflect.Type) *spec.Schema {
	obj := new(spec.Schema).Typed("object", "")
	s.addFields(obj, t)
	return obj
}

func (s *schemas) addFields(obj *spec.Schema, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Tag.Get("json") == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				s.addFields(obj, ft)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if f.Tag.Get("json") == "-" {
			continue
		}
		name := pkg.JSONName(f)
		if name == "" {
			name = f.Name
		}
		obj.SetProperty(name, *s.schemaFor(f.Type))
		if required(f) {
			obj.AddRequired(name)
		}
	}
}

// queryParams documents the form-tagged fields of a query DTO.
func queryParams(v any) []*spec.Parameter {
	if v == nil {
		return nil
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var params []*spec.Parameter
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		typ, format := "string", ""
		if pf, ok := primitive(ft); ok {
			typ, format = pf[0], pf[1]
		}
		p := spec.QueryParam(name).Typed(typ, format)
		if required(f) {
			p.AsRequired()
		}
		params = append(params, p)
	}
	return params
}

func primitive(t reflect.Type) ([2]string, bool) {
	switch t.Kind() {
	case reflect.String:
		return [2]string{"string", ""}, true
	case reflect.Bool:
		return [2]string{"boolean", ""}, true
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return [2]string{"integer", "int32"}, true
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return [2]string{"integer", "int64"}, true
	case reflect.Float32:
		return [2]string{"number", "float"}, true
	case reflect.Float64:
		return [2]string{"number", "double"}, true
	}
	return [2]string{}, false
}

func required(f reflect.StructField) bool {
	for _, rule := range strings.Split(f.Tag.Get("binding"), ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

// definitionName qualifies the type name with its package, e.g.
// "business.SignUpRequest".
func definitionName(t reflect.Type) string {
	pkgPath := t.PkgPath()
	if i := strings.LastIndex(pkgPath, "/"); i >= 0 {
		pkgPath = pkgPath[i+1:]
	}
	name := t.Name()
	// Instantiated generics carry fully qualified type arguments in the name.
	if base, args, ok := strings.Cut(name, "["); ok {
		parts := strings.Split(strings.TrimSuffix(args, "]"), ",")
		for i, a := range parts {
			if j := strings.LastIndex(a, "/"); j >= 0 {
				parts[i] = a[j+1:]
			}
		}
		name = base + "_" + strings.Join(parts, "_")
	}
	if pkgPath == "" {
		return name
	}
	return pkgPath + "." + name
}
