package routing

import (
	"context"
	"net/http"
)

type contextKey int

const (
	requestKey contextKey = iota
	endpointKey
)

// WithRequest attaches the ambient request to ctx.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey, r)
}

// RequestFrom returns the ambient request attached to ctx.
func RequestFrom(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey).(*http.Request)
	return r, ok && r != nil
}

// Ambient holds the request seen by one invocation scope.
type Ambient struct {
	Request *http.Request
}

// NewAmbient is the scoped constructor for *Ambient. The request attached to
// ctx is cloned so that a call can rewrite it freely.
func NewAmbient(ctx context.Context) *Ambient {
	r, ok := RequestFrom(ctx)
	if !ok {
		return &Ambient{}
	}
	return &Ambient{Request: r.Clone(ctx)}
}
