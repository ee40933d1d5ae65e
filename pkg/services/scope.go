package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/aretw0/mcpbridge/pkg/domain"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	scopeType   = reflect.TypeFor[*Scope]()
)

// Scope resolves services for one call. It is not safe for concurrent use.
type Scope struct {
	ctx       context.Context
	provider  *Provider
	instances map[reflect.Type]reflect.Value
	resolving map[reflect.Type]bool
	closers   []io.Closer
	closed    bool
}

// Context returns the context the scope was opened with.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Resolve returns the service registered for t.
// context.Context and *Scope always resolve to the scope's own.
func (s *Scope) Resolve(t reflect.Type) (reflect.Value, error) {
	if s.closed {
		return reflect.Value{}, errors.New("scope is closed")
	}
	switch t {
	case contextType:
		return reflect.ValueOf(&s.ctx).Elem(), nil
	case scopeType:
		return reflect.ValueOf(s), nil
	}

	if v, ok := s.instances[t]; ok {
		return v, nil
	}

	single, ctor, ok := s.provider.lookup(t)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s", domain.ErrUnknownService, t)
	}
	if ctor == nil {
		return single, nil
	}

	if s.resolving[t] {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrCircularDependency, t)
	}
	s.resolving[t] = true
	defer delete(s.resolving, t)

	args := make([]reflect.Value, len(ctor.in))
	for i, dep := range ctor.in {
		v, err := s.Resolve(dep)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("constructing %s: %w", t, err)
		}
		args[i] = v
	}

	out := ctor.fn.Call(args)
	if ctor.returnsError && !out[1].IsNil() {
		return reflect.Value{}, fmt.Errorf("constructing %s: %w", t, out[1].Interface().(error))
	}

	v := out[0]
	s.instances[t] = v
	if v.CanInterface() {
		if c, ok := v.Interface().(io.Closer); ok {
			s.closers = append(s.closers, c)
		}
	}
	return v, nil
}

// Construct returns an instance of t. Registered types are resolved; an
// unregistered pointer-to-struct is allocated and its fields tagged
// `inject:""` are resolved from the scope.
func (s *Scope) Construct(t reflect.Type) (reflect.Value, error) {
	if _, _, ok := s.provider.lookup(t); ok {
		return s.Resolve(t)
	}
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %s", domain.ErrUnknownService, t)
	}

	v := reflect.New(t.Elem())
	st := t.Elem()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if _, ok := f.Tag.Lookup("inject"); !ok || !f.IsExported() {
			continue
		}
		dep, err := s.Resolve(f.Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("injecting %s.%s: %w", st.Name(), f.Name, err)
		}
		v.Elem().Field(i).Set(dep)
	}
	return v, nil
}

// Close releases scoped instances in reverse creation order.
// It is safe to call more than once.
func (s *Scope) Close() error {
	closers := s.closers
	s.closers = nil
	s.closed = true

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get resolves T from s.
func Get[T any](s *Scope) (T, error) {
	var zero T
	v, err := s.Resolve(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	out, ok := v.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s resolved to %s", domain.ErrUnknownService, reflect.TypeFor[T](), v.Type())
	}
	return out, nil
}
