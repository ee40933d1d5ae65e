package domain

import "reflect"

// ParamSource tells where a parameter is read from when the operation is served natively.
type ParamSource string

const (
	SourcePath  ParamSource = "path"
	SourceQuery ParamSource = "query"
	SourceBody  ParamSource = "body"
	// SourceQueryOptions marks a parameter bound from every sigil-prefixed argument
	// ($filter, $orderby, ...). Its schema is flattened into the tool input.
	SourceQueryOptions ParamSource = "query-options"
)

// Param describes one declared parameter of an operation.
type Param struct {
	Name        string
	Type        reflect.Type
	Source      ParamSource
	Description string
	Required    bool
}

// ResponseType is a declared response of an operation.
// Type is nil for responses without a body.
type ResponseType struct {
	StatusCode int
	Type       reflect.Type
}

// Operation describes one API endpoint. It is immutable once discovered.
type Operation struct {
	Group       string
	Name        string
	Description string

	// Method is the declared HTTP method. Constraints is consulted when Method is empty.
	Method      string
	Constraints []string

	// Pattern is the route template, using chi syntax ("/weather/{date}").
	Pattern     string
	RouteValues map[string]string

	Params    []Param
	Returns   reflect.Type
	Responses []ResponseType

	// Handler is nil for operations that are not backed by a method.
	Handler *Handler
}

// ID returns the dotted identity used in logs and error titles.
func (o Operation) ID() string {
	return o.Group + "." + o.Name
}

// ToolName returns the name of the tool generated for this operation.
func (o Operation) ToolName() string {
	return o.Group + "_" + o.Name
}

// HTTPMethod resolves the target method: the declared method first, then the first constraint.
func (o Operation) HTTPMethod() (string, bool) {
	if o.Method != "" {
		return o.Method, true
	}
	for _, m := range o.Constraints {
		if m != "" {
			return m, true
		}
	}
	return "", false
}

// DescriptionGroup is a named set of operations, typically one API version.
type DescriptionGroup struct {
	Name       string
	Operations []Operation
}
