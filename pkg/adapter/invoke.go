package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/envelope"
	"github.com/aretw0/mcpbridge/pkg/query"
	"github.com/aretw0/mcpbridge/pkg/routing"
	"github.com/aretw0/mcpbridge/pkg/services"
	"github.com/pkg/errors"
)

type invoker struct {
	op     domain.Operation
	cfg    Config
	logger *slog.Logger
	title  string
}

func (a *invoker) invoke(ctx context.Context, args domain.Arguments) (result any) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = a.problem(panicError(r))
		}
		outcome := "success"
		if _, failed := result.(*domain.Problem); failed {
			outcome = "problem"
		}
		a.cfg.Metrics.ObserveInvocation(a.op.ToolName(), outcome, time.Since(start))
	}()

	v, err := a.call(ctx, args)
	if err != nil {
		return a.problem(err)
	}
	return v
}

func (a *invoker) call(ctx context.Context, args domain.Arguments) (any, error) {
	provider, ok := services.FromContext(ctx)
	if !ok {
		return nil, errors.WithStack(domain.ErrMissingServices)
	}

	scope := provider.NewScope(ctx)
	defer func() {
		if err := scope.Close(); err != nil {
			a.logger.Warn("closing invocation scope", "error", err)
		}
	}()

	ambient, err := services.Get[*routing.Ambient](scope)
	if err != nil || ambient == nil || ambient.Request == nil {
		return nil, errors.WithStack(domain.ErrMissingRequest)
	}
	codec, err := services.Get[domain.Codec](scope)
	if err != nil || codec == nil {
		codec = a.cfg.Codec
	}

	req, err := a.synthesize(scope.Context(), ambient, args)
	if err != nil {
		return nil, err
	}

	bound := a.bind(codec, args)

	hctx := routing.WithRequest(req.Context(), req)
	res, err := routing.Execute(hctx, scope, a.op, bound)
	if err != nil {
		return nil, err
	}
	return envelope.Unwrap(res), nil
}

// problem converts err into the payload returned to the caller.
func (a *invoker) problem(err error) *domain.Problem {
	cause := rootCause(err)

	a.logger.Error("tool invocation failed", "operation", a.op.ID(), "error", err)

	return &domain.Problem{
		Title:  a.title,
		Status: 500,
		Detail: err.Error(),
		Extensions: map[string]any{
			"exceptionType": typeName(cause),
			"stackTrace":    stackTrace(err),
		},
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return errors.WithStack(err)
	}
	return errors.Errorf("%v", r)
}

type causer interface {
	Cause() error
}

// rootCause follows both pkg/errors causes and standard wrapping.
func rootCause(err error) error {
	for {
		var next error
		if c, ok := err.(causer); ok {
			next = c.Cause()
		} else {
			next = errors.Unwrap(err)
		}
		if next == nil {
			return err
		}
		err = next
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace renders the innermost recorded stack, or records one here.
func stackTrace(err error) string {
	var traced error
	for e := err; e != nil; {
		if _, ok := e.(stackTracer); ok {
			traced = e
		}
		if c, ok := e.(causer); ok {
			e = c.Cause()
		} else {
			e = errors.Unwrap(e)
		}
	}
	if traced == nil {
		traced = errors.WithStack(err)
	}
	return fmt.Sprintf("%+v", traced)
}

func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// synthesize rewrites the ambient request so it targets the operation.
func (a *invoker) synthesize(ctx context.Context, ambient *routing.Ambient, args domain.Arguments) (*http.Request, error) {
	method, ok := a.op.HTTPMethod()
	if !ok {
		return nil, errors.Wrap(domain.ErrMissingMethod, a.op.ID())
	}

	values := maps.Clone(a.op.RouteValues)
	if values == nil {
		values = make(map[string]string)
	}
	for _, p := range a.op.Params {
		raw, present := args[p.Name]
		if !present {
			continue
		}
		if v, ok := coerce(raw, p.Type); ok {
			values[p.Name] = fmt.Sprint(v)
		}
	}

	req := ambient.Request.Clone(ctx)
	req.Method = method
	if u, ok := a.cfg.Links.Link(a.op, values); ok {
		req.URL.Path = u.Path
		req.URL.RawPath = u.RawPath
		req.URL.RawQuery = u.RawQuery
		req.RequestURI = u.RequestURI()
	}
	req = routing.WithEndpoint(req, a.op, values)

	ambient.Request = req
	return req, nil
}

// bind decodes every declared parameter. A parameter that is absent or fails
// to decode gets its type's zero value.
func (a *invoker) bind(codec domain.Codec, args domain.Arguments) []reflect.Value {
	out := make([]reflect.Value, len(a.op.Params))
	for i, p := range a.op.Params {
		raw, ok := args[p.Name]
		if p.Source == domain.SourceQueryOptions {
			raw, ok = queryOptions(args), true
		}
		if !ok {
			out[i] = reflect.Zero(p.Type)
			continue
		}

		ptr := reflect.New(p.Type)
		if err := codec.Unmarshal(raw, ptr.Interface()); err != nil {
			a.logger.Debug("parameter binding failed, using zero value", "param", p.Name, "error", err)
			out[i] = reflect.Zero(p.Type)
			continue
		}
		out[i] = ptr.Elem()
	}
	return out
}

// queryOptions gathers the sigil-prefixed arguments into one JSON object.
func queryOptions(args domain.Arguments) json.RawMessage {
	opts := make(map[string]json.RawMessage)
	for k, v := range args {
		if strings.HasPrefix(k, query.Sigil) {
			opts[k] = v
		}
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}
