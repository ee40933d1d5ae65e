package routing

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/envelope"
	"github.com/aretw0/mcpbridge/pkg/services"
)

// Execute constructs the operation's owner from scope, calls the handler with
// args and awaits deferred results. Handler errors are returned unchanged.
func Execute(ctx context.Context, scope *services.Scope, op domain.Operation, args []reflect.Value) (any, error) {
	h := op.Handler
	if h == nil {
		return nil, fmt.Errorf("%s: %w", op.ID(), domain.ErrNoHandler)
	}

	recv, err := scope.Construct(h.Owner)
	if err != nil {
		return nil, fmt.Errorf("activating %s: %w", op.ID(), err)
	}

	res, err := h.Invoke(ctx, recv, args)
	if err != nil {
		return nil, err
	}
	if aw, ok := res.(envelope.Awaitable); ok {
		return aw.Await(ctx)
	}
	return res, nil
}
