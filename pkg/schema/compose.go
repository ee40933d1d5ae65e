package schema

import (
	"fmt"
	"reflect"

	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/invopop/jsonschema"
)

// Input builds the object schema describing a tool's arguments.
func (g *Generator) Input(params []domain.Param) (*jsonschema.Schema, error) {
	out := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}

	for _, p := range params {
		ps, err := g.For(p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}

		if p.Source == domain.SourceQueryOptions {
			if ps.Properties == nil {
				return nil, fmt.Errorf("parameter %q: query options must describe an object", p.Name)
			}
			for pair := ps.Properties.Oldest(); pair != nil; pair = pair.Next() {
				out.Properties.Set(pair.Key, pair.Value)
			}
			continue
		}

		if ps.Description == "" {
			ps.Description = p.Description
		}
		out.Properties.Set(p.Name, ps)
		if p.Required || p.Source == domain.SourcePath {
			out.Required = append(out.Required, p.Name)
		}
	}

	return out, nil
}

// Output builds the oneOf schema over the declared responses and the return type.
// Responses are deduplicated by type identity; the return type is always last.
func (g *Generator) Output(responses []domain.ResponseType, returns reflect.Type) (*jsonschema.Schema, error) {
	seen := make(map[reflect.Type]bool, len(responses))
	members := make([]*jsonschema.Schema, 0, len(responses)+1)

	for _, r := range responses {
		if r.Type == nil || seen[r.Type] {
			continue
		}
		seen[r.Type] = true

		s, err := g.For(r.Type)
		if err != nil {
			return nil, fmt.Errorf("response %d: %w", r.StatusCode, err)
		}
		members = append(members, s)
	}

	s, err := g.For(returns)
	if err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}
	members = append(members, s)

	return &jsonschema.Schema{OneOf: members}, nil
}
