package schema

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/oapi-codegen/runtime/types"
)

// ErrUnsupportedType is returned when a type cannot be rendered as JSON Schema.
var ErrUnsupportedType = errors.New("unsupported type")

// Writer is implemented by types that describe their own schema.
// The method must have a value receiver so that it is found for both T and *T.
type Writer interface {
	JSONSchema() *jsonschema.Schema
}

var (
	writerType = reflect.TypeFor[Writer]()
	dateType   = reflect.TypeFor[types.Date]()
)

// Generator renders Go types as JSON Schema.
type Generator struct {
	reflector *jsonschema.Reflector
}

// NewGenerator creates a Generator with inlined, anonymous schemas.
func NewGenerator() *Generator {
	return &Generator{
		reflector: &jsonschema.Reflector{
			DoNotReference:            true,
			Anonymous:                 true,
			AllowAdditionalProperties: true,
			Mapper:                    mapKnownTypes,
		},
	}
}

func mapKnownTypes(t reflect.Type) *jsonschema.Schema {
	if t == dateType {
		return &jsonschema.Schema{Type: "string", Format: "date"}
	}
	return nil
}

var defaultGenerator = NewGenerator()

// Default returns the package level generator.
func Default() *Generator {
	return defaultGenerator
}

// For renders t with the default generator.
func For(t reflect.Type) (*jsonschema.Schema, error) {
	return defaultGenerator.For(t)
}

// MustFor is like For but panics on failure. It is meant for Writer
// implementations, whose panics are recovered by the calling generator.
func MustFor(t reflect.Type) *jsonschema.Schema {
	s, err := defaultGenerator.For(t)
	if err != nil {
		panic(err)
	}
	return s
}

// For renders t. A nil type renders as {"type":"null"}.
func (g *Generator) For(t reflect.Type) (s *jsonschema.Schema, err error) {
	if t == nil {
		return &jsonschema.Schema{Type: "null"}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			s = nil
			if rerr, ok := r.(error); ok && errors.Is(rerr, ErrUnsupportedType) {
				err = rerr
				return
			}
			err = fmt.Errorf("%w: %s: %v", ErrUnsupportedType, t, r)
		}
	}()

	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Implements(writerType) {
		return reflect.Zero(base).Interface().(Writer).JSONSchema(), nil
	}

	if cyclic(base, make(map[reflect.Type]bool)) {
		return nil, fmt.Errorf("%w: %s is recursive", ErrUnsupportedType, t)
	}

	s = g.reflector.ReflectFromType(base)
	s.Version = ""
	s.ID = ""
	s.Definitions = nil
	return s, nil
}

// cyclic reports whether t reaches itself through the fields and elements the
// reflector descends into. Inlined schemas cannot describe such types.
func cyclic(t reflect.Type, path map[reflect.Type]bool) bool {
	if t == dateType || t.Implements(writerType) {
		return false
	}
	if path[t] {
		return true
	}
	path[t] = true
	defer delete(path, t)

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return cyclic(t.Elem(), path)
	case reflect.Map:
		return cyclic(t.Key(), path) || cyclic(t.Elem(), path)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if (!f.IsExported() && !f.Anonymous) || f.Tag.Get("json") == "-" {
				continue
			}
			if cyclic(f.Type, path) {
				return true
			}
		}
	}
	return false
}
