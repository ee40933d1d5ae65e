package query

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/mcpbridge/pkg/cache"
)

// ErrNotEntity is returned when a type cannot be used as an entity set.
var ErrNotEntity = errors.New("type is not an entity")

// Property is one queryable property of an entity, named as it appears in JSON.
type Property struct {
	Name  string
	Index []int
	Type  reflect.Type
}

// EntityModel is the structural model of one entity type, exposed as its own entity set.
type EntityModel struct {
	Type       reflect.Type
	EntitySet  string
	Properties []Property

	byName map[string]int
}

// Property looks up a property by JSON name, falling back to a case-insensitive match.
func (m *EntityModel) Property(name string) (Property, bool) {
	if i, ok := m.byName[name]; ok {
		return m.Properties[i], true
	}
	for _, p := range m.Properties {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Property{}, false
}

var models = cache.New[reflect.Type, *EntityModel]()

// ModelFor returns the cached model of t, building it on first use.
func ModelFor(t reflect.Type) (*EntityModel, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrNotEntity)
	}
	return models.GetOrBuild(t, buildModel)
}

func buildModel(t reflect.Type) (*EntityModel, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotEntity, t)
	}

	m := &EntityModel{
		Type:      t,
		EntitySet: t.Name(),
		byName:    make(map[string]int),
	}
	collect(m, t, nil)
	return m, nil
}

func collect(m *EntityModel, t reflect.Type, index []int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int(nil), index...), i)

		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && ft != timeType {
				collect(m, ft, idx)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if _, dup := m.byName[name]; dup {
			continue
		}

		m.byName[name] = len(m.Properties)
		m.Properties = append(m.Properties, Property{Name: name, Index: idx, Type: f.Type})
	}
}
