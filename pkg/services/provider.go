package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrCircularDependency is returned when a constructor needs, directly or not, its own result.
var ErrCircularDependency = errors.New("circular dependency")

var errorType = reflect.TypeFor[error]()

type constructor struct {
	fn           reflect.Value
	in           []reflect.Type
	returnsError bool
}

// Provider is the root of service resolution. It is safe for concurrent use.
type Provider struct {
	mu         sync.RWMutex
	singletons map[reflect.Type]reflect.Value
	scoped     map[reflect.Type]constructor
}

// NewProvider creates an empty provider.
func NewProvider() *Provider {
	return &Provider{
		singletons: make(map[reflect.Type]reflect.Value),
		scoped:     make(map[reflect.Type]constructor),
	}
}

// AddSingleton registers v under its dynamic type.
func (p *Provider) AddSingleton(v any) {
	p.addSingleton(reflect.TypeOf(v), reflect.ValueOf(v))
}

// Singleton registers v under T, which is typically an interface.
func Singleton[T any](p *Provider, v T) {
	p.addSingleton(reflect.TypeFor[T](), reflect.ValueOf(&v).Elem())
}

func (p *Provider) addSingleton(t reflect.Type, v reflect.Value) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.singletons[t] = v
}

// AddScoped registers a constructor of the form func(deps...) T or
// func(deps...) (T, error). Its signature is inspected once, here.
func (p *Provider) AddScoped(fn any) error {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %s", t)
	}

	c := constructor{fn: v}
	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
	case t.NumOut() == 2 && t.Out(1) == errorType:
		c.returnsError = true
	default:
		return fmt.Errorf("constructor %s must return T or (T, error)", t)
	}
	for i := 0; i < t.NumIn(); i++ {
		c.in = append(c.in, t.In(i))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.scoped[t.Out(0)] = c
	return nil
}

// MustAddScoped is like AddScoped but panics on an invalid constructor.
func (p *Provider) MustAddScoped(fn any) {
	if err := p.AddScoped(fn); err != nil {
		panic(err)
	}
}

func (p *Provider) lookup(t reflect.Type) (reflect.Value, *constructor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.singletons[t]; ok {
		return v, nil, true
	}
	if c, ok := p.scoped[t]; ok {
		return reflect.Value{}, &c, true
	}
	return reflect.Value{}, nil, false
}

// NewScope opens a scope bound to ctx. Callers must Close it.
func (p *Provider) NewScope(ctx context.Context) *Scope {
	return &Scope{
		ctx:       ctx,
		provider:  p,
		instances: make(map[reflect.Type]reflect.Value),
		resolving: make(map[reflect.Type]bool),
	}
}

type providerKey struct{}

// WithProvider attaches p to ctx.
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// FromContext returns the provider attached to ctx.
func FromContext(ctx context.Context) (*Provider, bool) {
	p, ok := ctx.Value(providerKey{}).(*Provider)
	return p, ok && p != nil
}
