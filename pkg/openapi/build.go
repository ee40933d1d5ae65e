package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/query"
	"github.com/aretw0/mcpbridge/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/invopop/jsonschema"
)

// Info is the document metadata.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Build describes every handler-backed operation of group.
func Build(group domain.DescriptionGroup, gen *schema.Generator, info Info) (*openapi3.T, error) {
	if gen == nil {
		gen = schema.Default()
	}
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       info.Title,
			Version:     info.Version,
			Description: info.Description,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, op := range group.Operations {
		if op.Handler == nil || op.Pattern == "" {
			continue
		}
		methods := op.Constraints
		if op.Method != "" {
			methods = []string{op.Method}
		}

		o, err := operation(op, gen)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op.ID(), err)
		}
		for _, m := range methods {
			doc.AddOperation(Path(op.Pattern), strings.ToUpper(m), o)
		}
	}
	return doc, nil
}

func operation(op domain.Operation, gen *schema.Generator) (*openapi3.Operation, error) {
	o := openapi3.NewOperation()
	o.OperationID = op.ToolName()
	o.Summary = op.Description
	o.Tags = []string{op.Group}

	for _, p := range op.Params {
		if p.Source == domain.SourceQueryOptions {
			raw := query.RawSchema()
			for pair := raw.Properties.Oldest(); pair != nil; pair = pair.Next() {
				s, err := convert(pair.Value)
				if err != nil {
					return nil, err
				}
				o.AddParameter(openapi3.NewQueryParameter(pair.Key).
					WithDescription(pair.Value.Description).
					WithSchema(s))
			}
			continue
		}

		js, err := gen.For(p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		s, err := convert(js)
		if err != nil {
			return nil, err
		}

		switch p.Source {
		case domain.SourcePath:
			o.AddParameter(openapi3.NewPathParameter(p.Name).WithDescription(p.Description).WithSchema(s))
		case domain.SourceBody:
			o.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
				WithDescription(p.Description).
				WithRequired(p.Required).
				WithJSONSchema(s)}
		default:
			o.AddParameter(openapi3.NewQueryParameter(p.Name).
				WithDescription(p.Description).
				WithRequired(p.Required).
				WithSchema(s))
		}
	}

	o.Responses = openapi3.NewResponsesWithCapacity(len(op.Responses) + 1)
	success := false
	for _, r := range op.Responses {
		resp := openapi3.NewResponse().WithDescription(statusText(r.StatusCode))
		if r.Type != nil {
			js, err := gen.For(r.Type)
			if err != nil {
				return nil, fmt.Errorf("response %d: %w", r.StatusCode, err)
			}
			s, err := convert(js)
			if err != nil {
				return nil, err
			}
			resp = resp.WithJSONSchema(s)
		}
		o.AddResponse(r.StatusCode, resp)
		success = success || (r.StatusCode >= 200 && r.StatusCode < 300)
	}
	if !success {
		resp := openapi3.NewResponse().WithDescription(statusText(http.StatusOK))
		if op.Returns != nil {
			js, err := gen.For(op.Returns)
			if err != nil {
				return nil, fmt.Errorf("return type: %w", err)
			}
			s, err := convert(js)
			if err != nil {
				return nil, err
			}
			resp = resp.WithJSONSchema(s)
		}
		o.AddResponse(http.StatusOK, resp)
	}
	return o, nil
}

// convert re-reads a JSON Schema as an OpenAPI schema object.
func convert(js *jsonschema.Schema) (*openapi3.Schema, error) {
	data, err := json.Marshal(js)
	if err != nil {
		return nil, err
	}
	s := openapi3.NewSchema()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("converting schema: %w", err)
	}
	return s, nil
}

func statusText(code int) string {
	if t := http.StatusText(code); t != "" {
		return t
	}
	return strconv.Itoa(code)
}

// Path strips parameter constraints from a route template:
// "/weather/{date:\d+}" becomes "/weather/{date}".
func Path(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		b.WriteByte(c)
		if c != '{' {
			continue
		}

		depth := 1
		j := i + 1
		name := -1
		for ; j < len(pattern) && depth > 0; j++ {
			switch pattern[j] {
			case '{':
				depth++
			case '}':
				depth--
			case ':':
				if depth == 1 && name < 0 {
					name = j
				}
			}
		}
		end := j - 1
		if name < 0 {
			name = end
		}
		b.WriteString(pattern[i+1 : name])
		b.WriteByte('}')
		i = end
	}
	return b.String()
}
