package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Register adds every tool to srv in a single batch.
func Register(srv *server.MCPServer, tools []domain.Tool) error {
	batch := make([]server.ServerTool, 0, len(tools))
	for _, t := range tools {
		st, err := ServerTool(t)
		if err != nil {
			return err
		}
		batch = append(batch, st)
	}
	srv.AddTools(batch...)
	return nil
}

// Registrar registers tool sets on an MCP server.
type Registrar struct {
	Server *server.MCPServer
}

var _ ports.ToolRegistrar = Registrar{}

func (r Registrar) RegisterTools(tools []domain.Tool) error {
	return Register(r.Server, tools)
}

// ServerTool converts t into its mcp-go registration.
func ServerTool(t domain.Tool) (server.ServerTool, error) {
	in, err := json.Marshal(t.InputSchema)
	if err != nil {
		return server.ServerTool{}, fmt.Errorf("%s: encoding input schema: %w", t.Name, err)
	}
	out, err := json.Marshal(t.OutputSchema)
	if err != nil {
		return server.ServerTool{}, fmt.Errorf("%s: encoding output schema: %w", t.Name, err)
	}

	mt := mcp.NewToolWithRawSchema(t.Name, t.Description, in)
	mt.RawOutputSchema = out
	mt.Annotations = annotations(t.Operation)

	return server.ServerTool{Tool: mt, Handler: handler(t)}, nil
}

func annotations(op domain.Operation) mcp.ToolAnnotation {
	a := mcp.ToolAnnotation{Title: op.ID()}
	method, ok := op.HTTPMethod()
	if !ok {
		return a
	}
	switch method {
	case http.MethodGet, http.MethodHead:
		a.ReadOnlyHint = mcp.ToBoolPtr(true)
	case http.MethodDelete:
		a.ReadOnlyHint = mcp.ToBoolPtr(false)
		a.DestructiveHint = mcp.ToBoolPtr(true)
		a.IdempotentHint = mcp.ToBoolPtr(true)
	case http.MethodPut:
		a.ReadOnlyHint = mcp.ToBoolPtr(false)
		a.IdempotentHint = mcp.ToBoolPtr(true)
	default:
		a.ReadOnlyHint = mcp.ToBoolPtr(false)
	}
	return a
}

func handler(t domain.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := arguments(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		return Result(t.Invoke(ctx, args)), nil
	}
}

func arguments(in map[string]any) (domain.Arguments, error) {
	out := make(domain.Arguments, len(in))
	for k, v := range in {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = raw
	}
	return out, nil
}

// Result converts an invocation result into a tool call result. Problems are
// reported with IsError set. Values that do not encode to a JSON object are
// wrapped as {"result": value}.
func Result(v any) *mcp.CallToolResult {
	if p, ok := v.(*domain.Problem); ok {
		res := mcp.NewToolResultStructuredOnly(p)
		res.IsError = true
		return res
	}

	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return mcp.NewToolResultStructured(json.RawMessage(data), string(data))
	}
	return mcp.NewToolResultStructured(map[string]json.RawMessage{"result": data}, string(data))
}
