package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/invopop/jsonschema"
)

// Catalog renders tools as a Markdown document, one section per tool with
// its route and an argument table.
func Catalog(group string, tools []domain.Tool) string {
	var b strings.Builder
	if group != "" {
		fmt.Fprintf(&b, "# Tools (%s)\n\n", group)
	} else {
		b.WriteString("# Tools\n\n")
	}
	if len(tools) == 0 {
		b.WriteString("_No tools were discovered._\n")
		return b.String()
	}

	for _, t := range tools {
		fmt.Fprintf(&b, "## %s\n\n", t.Name)
		if route := route(t.Operation); route != "" {
			fmt.Fprintf(&b, "`%s`\n\n", route)
		}
		if t.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", t.Description)
		}
		arguments(&b, t.InputSchema)
	}
	return b.String()
}

func route(op domain.Operation) string {
	method := op.Method
	if method == "" && len(op.Constraints) > 0 {
		method = strings.Join(op.Constraints, "|")
	}
	return strings.TrimSpace(method + " " + op.Pattern)
}

func arguments(b *strings.Builder, s *jsonschema.Schema) {
	if s == nil || s.Properties == nil || s.Properties.Len() == 0 {
		b.WriteString("_No arguments._\n\n")
		return
	}

	b.WriteString("| Argument | Type | Required | Description |\n")
	b.WriteString("|---|---|---|---|\n")
	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		required := ""
		if slices.Contains(s.Required, p.Key) {
			required = "yes"
		}
		fmt.Fprintf(b, "| `%s` | %s | %s | %s |\n", p.Key, typeOf(p.Value), required, escape(p.Value.Description))
	}
	b.WriteString("\n")
}

func typeOf(s *jsonschema.Schema) string {
	switch {
	case s == nil:
		return ""
	case s.Type == "array" && s.Items != nil:
		return typeOf(s.Items) + "[]"
	case s.Format != "":
		return s.Type + " (" + s.Format + ")"
	case s.Type != "":
		return s.Type
	case len(s.OneOf) > 0 || len(s.AnyOf) > 0:
		return "union"
	}
	return "any"
}

func escape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
