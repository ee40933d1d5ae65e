package query

import (
	"reflect"
	"sort"
)

// Apply filters, orders and pages items. The input slice is not modified.
func (o Options[T]) Apply(items []T) []T {
	out := o.Filtered(items)

	if len(o.OrderBy) > 0 {
		terms := o.orderIndexes()
		sort.SliceStable(out, func(i, j int) bool {
			return less(reflect.ValueOf(out[i]), reflect.ValueOf(out[j]), terms)
		})
	}

	if o.Skip != nil {
		if *o.Skip >= len(out) {
			return out[:0]
		}
		out = out[*o.Skip:]
	}
	if o.Top != nil && *o.Top < len(out) {
		out = out[:*o.Top]
	}
	return out
}

// Filtered returns the items matching $filter, in their original order.
func (o Options[T]) Filtered(items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if o.Filter == nil || o.Filter.Match(reflect.ValueOf(it)) {
			out = append(out, it)
		}
	}
	return out
}

type orderIndex struct {
	index      []int
	descending bool
}

func (o Options[T]) orderIndexes() []orderIndex {
	model := o.Model
	if model == nil {
		var err error
		if model, err = ModelFor(reflect.TypeFor[T]()); err != nil {
			return nil
		}
	}

	terms := make([]orderIndex, 0, len(o.OrderBy))
	for _, t := range o.OrderBy {
		if p, ok := model.Property(t.Property); ok {
			terms = append(terms, orderIndex{index: p.Index, descending: t.Descending})
		}
	}
	return terms
}

func less(a, b reflect.Value, terms []orderIndex) bool {
	for _, t := range terms {
		av, bv := propertyValue(a, t.index), propertyValue(b, t.index)

		var c int
		switch {
		case av == nil && bv == nil:
			continue
		case av == nil:
			c = -1
		case bv == nil:
			c = 1
		default:
			c, _ = compare(av, bv)
		}
		if c == 0 {
			continue
		}
		if t.descending {
			return c > 0
		}
		return c < 0
	}
	return false
}

// Project renders items as maps restricted to the $select properties.
// Without $select every property is kept. Values keep their Go types.
func (o Options[T]) Project(items []T) ([]map[string]any, error) {
	model := o.Model
	if model == nil {
		var err error
		if model, err = ModelFor(reflect.TypeFor[T]()); err != nil {
			return nil, err
		}
	}

	props := model.Properties
	if len(o.Select) > 0 {
		props = make([]Property, 0, len(o.Select))
		for _, name := range o.Select {
			if p, ok := model.Property(name); ok {
				props = append(props, p)
			}
		}
	}

	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		v := reflect.ValueOf(it)
		for v.Kind() == reflect.Pointer && !v.IsNil() {
			v = v.Elem()
		}
		row := make(map[string]any, len(props))
		for _, p := range props {
			if v.Kind() != reflect.Struct {
				break
			}
			if f, err := v.FieldByIndexErr(p.Index); err == nil && f.CanInterface() {
				row[p.Name] = f.Interface()
			}
		}
		out = append(out, row)
	}
	return out, nil
}
