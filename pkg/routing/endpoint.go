package routing

import (
	"context"
	"net/http"
	"sort"

	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// Endpoint is the routing metadata of a request.
type Endpoint struct {
	Operation domain.Operation
	Values    map[string]string
}

// WithEndpoint returns a shallow copy of r routed to op: a fresh chi route
// context carries the pattern and the path parameters found in values.
func WithEndpoint(r *http.Request, op domain.Operation, values map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.RoutePath = r.URL.Path
	rctx.RouteMethod = r.Method
	if op.Pattern != "" {
		rctx.RoutePatterns = []string{op.Pattern}
	}

	names := make([]string, 0, len(values))
	for _, seg := range parseTemplate(op.Pattern) {
		if seg.param != "" {
			if _, ok := values[seg.param]; ok {
				names = append(names, seg.param)
			}
		}
	}
	sort.Strings(names)
	for _, name := range names {
		rctx.URLParams.Add(name, values[name])
	}

	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, endpointKey, &Endpoint{Operation: op, Values: values})
	return r.WithContext(ctx)
}

// EndpointFrom returns the endpoint r was routed to.
func EndpointFrom(r *http.Request) (*Endpoint, bool) {
	e, ok := r.Context().Value(endpointKey).(*Endpoint)
	return e, ok && e != nil
}
