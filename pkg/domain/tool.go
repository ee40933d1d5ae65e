package domain

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Arguments are the raw, still encoded arguments of a tool call.
// They are never modified once received.
type Arguments map[string]json.RawMessage

// InvokeFunc runs one tool call. It always returns a value: failures are
// reported as *Problem.
type InvokeFunc func(ctx context.Context, args Arguments) any

// Tool is the callable unit exposed to MCP clients. It is created once per
// operation at startup and never mutated.
type Tool struct {
	Name         string
	Description  string
	InputSchema  *jsonschema.Schema
	OutputSchema *jsonschema.Schema
	Operation    Operation
	Invoke       InvokeFunc
}
