package envelope

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/aretw0/mcpbridge/pkg/schema"
	"github.com/invopop/jsonschema"
)

// HTTPResult is a result carrying HTTP semantics.
type HTTPResult interface {
	Status() int
}

// ResultConverter is implemented by values that convert into a final result.
type ResultConverter interface {
	ConvertResult() any
}

// ValueResult is implemented by results wrapping an inner value.
type ValueResult interface {
	ResultValue() any
}

// ObjectResult is a status code with a body.
type ObjectResult struct {
	StatusCode int
	Value      any
}

func (r *ObjectResult) Status() int { return r.StatusCode }

func (r *ObjectResult) ResultValue() any { return r.Value }

// StatusResult is a status code without a body.
type StatusResult struct {
	StatusCode int `json:"statusCode"`
}

func (r *StatusResult) Status() int { return r.StatusCode }

// Result holds either a plain Value or an explicit HTTP result.
type Result[T any] struct {
	Value  T
	Result HTTPResult
}

// Ok wraps a plain value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Created wraps v in a 201 object result.
func Created[T any](v T) Result[T] {
	return Result[T]{Result: &ObjectResult{StatusCode: http.StatusCreated, Value: v}}
}

// NotFound returns a body-less 404.
func NotFound[T any]() Result[T] {
	return Result[T]{Result: &StatusResult{StatusCode: http.StatusNotFound}}
}

// NoContent returns a body-less 204.
func NoContent[T any]() Result[T] {
	return Result[T]{Result: &StatusResult{StatusCode: http.StatusNoContent}}
}

// BadRequest returns a 400 object result carrying body.
func BadRequest[T any](body any) Result[T] {
	return WithStatus[T](http.StatusBadRequest, body)
}

// WithStatus returns an object result with an arbitrary body, such as a problem payload.
func WithStatus[T any](status int, body any) Result[T] {
	return Result[T]{Result: &ObjectResult{StatusCode: status, Value: body}}
}

// ConvertResult returns the explicit result, or the plain value as a 200 object result.
func (r Result[T]) ConvertResult() any {
	if r.Result != nil {
		return r.Result
	}
	return &ObjectResult{StatusCode: http.StatusOK, Value: r.Value}
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if obj, ok := r.Result.(*ObjectResult); ok && obj != nil {
		return json.Marshal(obj.Value)
	}
	if r.Result != nil {
		return json.Marshal(r.Result)
	}
	return json.Marshal(r.Value)
}

func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.Value = v
	r.Result = &ObjectResult{StatusCode: http.StatusOK, Value: v}
	return nil
}

func (Result[T]) JSONSchema() *jsonschema.Schema {
	return schema.MustFor(reflect.TypeFor[T]())
}

// Convert applies ResultConverter, if implemented.
func Convert(v any) any {
	if c, ok := v.(ResultConverter); ok {
		return c.ConvertResult()
	}
	return v
}

// Unwrap converts v and returns the inner value of object-with-value results.
// Anything else is returned unchanged.
func Unwrap(v any) any {
	v = Convert(v)
	if r, ok := v.(ValueResult); ok {
		return r.ResultValue()
	}
	return v
}

// Status reports the HTTP status carried by v after conversion, or fallback.
func Status(v any, fallback int) int {
	if r, ok := Convert(v).(HTTPResult); ok {
		return r.Status()
	}
	return fallback
}
