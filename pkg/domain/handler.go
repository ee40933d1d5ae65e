package domain

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Handler is the method backing an operation. The method signature is inspected
// once, when the handler is created:
//
//	func (c *Owner) Name([ctx context.Context,] params...) ([value,] [error])
type Handler struct {
	Owner  reflect.Type
	Method reflect.Method

	takesContext bool
	params       []reflect.Type
	returns      reflect.Type
	returnsError bool
}

// NewHandler resolves the named method on owner.
func NewHandler(owner reflect.Type, name string) (*Handler, error) {
	if owner == nil {
		return nil, fmt.Errorf("handler %q: owner type is nil", name)
	}
	m, ok := owner.MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("handler %q: method not found on %s", name, owner)
	}

	h := &Handler{Owner: owner, Method: m}
	mt := m.Type

	// In(0) is the receiver.
	first := 1
	if mt.NumIn() > 1 && mt.In(1) == contextType {
		h.takesContext = true
		first = 2
	}
	for i := first; i < mt.NumIn(); i++ {
		h.params = append(h.params, mt.In(i))
	}

	switch mt.NumOut() {
	case 0:
	case 1:
		if mt.Out(0) == errorType {
			h.returnsError = true
		} else {
			h.returns = mt.Out(0)
		}
	case 2:
		if mt.Out(1) != errorType {
			return nil, fmt.Errorf("handler %s.%s: second result must be error", owner, name)
		}
		h.returns = mt.Out(0)
		h.returnsError = true
	default:
		return nil, fmt.Errorf("handler %s.%s: too many results", owner, name)
	}

	return h, nil
}

// Params returns the declared parameter types, excluding the receiver and context.
func (h *Handler) Params() []reflect.Type {
	return h.params
}

// Returns is the declared value type, or nil when the method only returns an error.
func (h *Handler) Returns() reflect.Type {
	return h.returns
}

// Invoke calls the method on recv with the bound arguments.
func (h *Handler) Invoke(ctx context.Context, recv reflect.Value, args []reflect.Value) (any, error) {
	if len(args) != len(h.params) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", h.Method.Name, len(h.params), len(args))
	}

	in := make([]reflect.Value, 0, len(args)+2)
	in = append(in, recv)
	if h.takesContext {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	in = append(in, args...)

	out := h.Method.Func.Call(in)

	if h.returnsError {
		if errV := out[len(out)-1]; !errV.IsNil() {
			return nil, errV.Interface().(error)
		}
	}
	if h.returns == nil {
		return nil, nil
	}

	v := out[0]
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
	}
	return v.Interface(), nil
}
