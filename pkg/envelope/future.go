package envelope

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/mcpbridge/pkg/schema"
	"github.com/invopop/jsonschema"
)

// Awaitable is implemented by deferred handler results.
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// Future is a value of type T computed in the background.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn in a new goroutine. A panic in fn completes the future with an error.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("future panicked: %v", r)
			}
		}()
		f.value, f.err = fn()
	}()
	return f
}

// Resolved returns an already completed future.
func Resolved[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: v}
	close(f.done)
	return f
}

// Get blocks until the future completes or ctx is done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) Await(ctx context.Context) (any, error) {
	v, err := f.Get(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (Future[T]) JSONSchema() *jsonschema.Schema {
	return schema.MustFor(reflect.TypeFor[T]())
}
