package routing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/envelope"
	"github.com/aretw0/mcpbridge/pkg/query"
	"github.com/aretw0/mcpbridge/pkg/services"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Mount registers every handler-backed operation on r under its own method
// and pattern. Requests must carry a service provider in their context.
func Mount(r chi.Router, ops []domain.Operation, codec domain.Codec, logger *slog.Logger) error {
	for _, op := range ops {
		if op.Handler == nil {
			continue
		}
		methods := op.Constraints
		if op.Method != "" {
			methods = []string{op.Method}
		}
		if len(methods) == 0 {
			return fmt.Errorf("%s: %w", op.ID(), domain.ErrMissingMethod)
		}
		if op.Pattern == "" {
			return fmt.Errorf("%s: no route pattern", op.ID())
		}

		h := Handler(op, codec, logger)
		for _, m := range methods {
			r.Method(m, op.Pattern, h)
		}
	}
	return nil
}

// Handler serves op over plain HTTP: parameters are bound from the path,
// query string and body, and the result is written as JSON.
func Handler(op domain.Operation, codec domain.Codec, logger *slog.Logger) http.Handler {
	if codec == nil {
		codec = domain.JSONCodec{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provider, ok := services.FromContext(r.Context())
		if !ok {
			writeProblem(w, codec, op, http.StatusInternalServerError, domain.ErrMissingServices)
			return
		}

		r = WithEndpoint(r, op, routeValues(r))
		ctx := WithRequest(r.Context(), r)
		scope := provider.NewScope(ctx)
		defer func() {
			if err := scope.Close(); err != nil {
				logger.Warn("closing request scope", "operation", op.ID(), "error", err)
			}
		}()

		args, err := bindRequest(r, op, codec)
		if err != nil {
			logger.Debug("rejecting request", "operation", op.ID(), "error", err)
			writeProblem(w, codec, op, http.StatusBadRequest, err)
			return
		}

		res, err := Execute(ctx, scope, op, args)
		if err != nil {
			logger.Error("operation failed", "operation", op.ID(), "error", err)
			writeProblem(w, codec, op, http.StatusInternalServerError, err)
			return
		}
		writeResult(w, codec, res, logger)
	})
}

// routeValues collects the path parameters chi matched for r.
func routeValues(r *http.Request) map[string]string {
	values := make(map[string]string)
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return values
	}
	for i, k := range rctx.URLParams.Keys {
		if i < len(rctx.URLParams.Values) && k != "*" {
			values[k] = rctx.URLParams.Values[i]
		}
	}
	return values
}

func bindRequest(r *http.Request, op domain.Operation, codec domain.Codec) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(op.Params))
	for i, p := range op.Params {
		dest := reflect.New(p.Type)
		var err error

		switch p.Source {
		case domain.SourcePath:
			err = runtime.BindStyledParameterWithOptions("simple", p.Name, chi.URLParam(r, p.Name), dest.Interface(),
				runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
		case domain.SourceQuery:
			err = runtime.BindQueryParameter("form", true, p.Required, p.Name, r.URL.Query(), dest.Interface())
		case domain.SourceBody:
			err = bindBody(r, p, codec, dest.Interface())
		case domain.SourceQueryOptions:
			err = bindQueryOptions(r, codec, dest.Interface())
		}
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		args[i] = dest.Elem()
	}
	return args, nil
}

func bindBody(r *http.Request, p domain.Param, codec domain.Codec, dest any) error {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		if p.Required {
			return errors.New("request body is required")
		}
		return nil
	}
	return codec.Unmarshal(data, dest)
}

func bindQueryOptions(r *http.Request, codec domain.Codec, dest any) error {
	opts := make(map[string]string)
	for k, v := range r.URL.Query() {
		if strings.HasPrefix(k, query.Sigil) && len(v) > 0 {
			opts[k] = v[0]
		}
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	return codec.Unmarshal(data, dest)
}

func writeResult(w http.ResponseWriter, codec domain.Codec, res any, logger *slog.Logger) {
	status := envelope.Status(res, http.StatusOK)
	converted := envelope.Convert(res)

	var body any
	switch v := converted.(type) {
	case envelope.ValueResult:
		body = v.ResultValue()
	case envelope.HTTPResult:
		w.WriteHeader(status)
		return
	default:
		body = v
	}
	if body == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data, err := codec.Marshal(body)
	if err != nil {
		logger.Error("encoding response", "error", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeProblem(w http.ResponseWriter, codec domain.Codec, op domain.Operation, status int, err error) {
	p := &domain.Problem{
		Title:  fmt.Sprintf("An error occurred while invoking %s", op.ID()),
		Status: status,
		Detail: err.Error(),
	}
	data, _ := codec.Marshal(p)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	w.Write(data)
}
