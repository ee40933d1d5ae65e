package schema_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/schema"
	"github.com/invopop/jsonschema"
	"github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y,omitempty"`
}

type paging struct{}

func (paging) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set("$top", &jsonschema.Schema{Type: "integer"})
	props.Set("$skip", &jsonschema.Schema{Type: "integer"})
	return &jsonschema.Schema{Type: "object", Properties: props}
}

type report struct {
	Day    types.Date `json:"day"`
	At     time.Time  `json:"at"`
	Paging paging     `json:"paging"`
}

func render(t *testing.T, s *jsonschema.Schema) map[string]any {
	t.Helper()
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestFor_Struct(t *testing.T) {
	s, err := schema.For(reflect.TypeFor[point]())
	require.NoError(t, err)

	m := render(t, s)
	assert.Equal(t, "object", m["type"])
	assert.NotContains(t, m, "$schema")
	assert.NotContains(t, m, "$id")
	assert.NotContains(t, m, "$defs")
	assert.Equal(t, []any{"x"}, m["required"])

	props := m["properties"].(map[string]any)
	assert.Equal(t, "integer", props["x"].(map[string]any)["type"])
}

func TestFor_PointerAndNil(t *testing.T) {
	byValue, err := schema.For(reflect.TypeFor[point]())
	require.NoError(t, err)
	byPointer, err := schema.For(reflect.TypeFor[*point]())
	require.NoError(t, err)
	assert.Equal(t, render(t, byValue), render(t, byPointer))

	null, err := schema.For(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "null"}, render(t, null))
}

func TestFor_WriterAppliesAtEveryLevel(t *testing.T) {
	top, err := schema.For(reflect.TypeFor[paging]())
	require.NoError(t, err)
	assert.Contains(t, render(t, top)["properties"], "$top")

	nested, err := schema.For(reflect.TypeFor[report]())
	require.NoError(t, err)
	props := render(t, nested)["properties"].(map[string]any)

	assert.Contains(t, props["paging"].(map[string]any)["properties"], "$skip")
	assert.Equal(t, "date", props["day"].(map[string]any)["format"])
	assert.Equal(t, "date-time", props["at"].(map[string]any)["format"])
}

func TestFor_UnsupportedType(t *testing.T) {
	_, err := schema.For(reflect.TypeFor[chan int]())
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)

	type withFunc struct {
		F func() `json:"f"`
	}
	_, err = schema.For(reflect.TypeFor[withFunc]())
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)
}

type treeNode struct {
	Name     string      `json:"name"`
	Children []*treeNode `json:"children"`
}

type linked struct {
	Next map[string]linked `json:"next"`
}

type shared struct {
	A point `json:"a"`
	B point `json:"b"`
}

func TestFor_RecursiveTypeIsUnsupported(t *testing.T) {
	_, err := schema.For(reflect.TypeFor[treeNode]())
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)

	_, err = schema.For(reflect.TypeFor[[]*treeNode]())
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)

	_, err = schema.For(reflect.TypeFor[linked]())
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)

	_, err = schema.Default().Output(nil, reflect.TypeFor[*treeNode]())
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)
}

func TestFor_RepeatedTypeIsNotRecursive(t *testing.T) {
	s, err := schema.For(reflect.TypeFor[shared]())
	require.NoError(t, err)
	assert.Contains(t, render(t, s)["properties"], "b")
}

func TestInput(t *testing.T) {
	params := []domain.Param{
		{Name: "id", Type: reflect.TypeFor[int](), Source: domain.SourcePath, Description: "identifier"},
		{Name: "verbose", Type: reflect.TypeFor[bool](), Source: domain.SourceQuery},
		{Name: "options", Type: reflect.TypeFor[paging](), Source: domain.SourceQueryOptions},
	}

	s, err := schema.Default().Input(params)
	require.NoError(t, err)

	m := render(t, s)
	props := m["properties"].(map[string]any)
	assert.Len(t, props, 4)
	assert.Contains(t, props, "$top")
	assert.Contains(t, props, "$skip")
	assert.NotContains(t, props, "options")
	assert.Equal(t, "identifier", props["id"].(map[string]any)["description"])
	assert.Equal(t, []any{"id"}, m["required"])
}

func TestInput_QueryOptionsMustBeObject(t *testing.T) {
	_, err := schema.Default().Input([]domain.Param{
		{Name: "options", Type: reflect.TypeFor[string](), Source: domain.SourceQueryOptions},
	})
	assert.Error(t, err)
}

func TestOutput_OrderAndDedup(t *testing.T) {
	pt := reflect.TypeFor[point]()
	problem := reflect.TypeFor[domain.Problem]()

	s, err := schema.Default().Output([]domain.ResponseType{
		{StatusCode: 200, Type: pt},
		{StatusCode: 400, Type: problem},
		{StatusCode: 404, Type: problem},
		{StatusCode: 204},
	}, pt)
	require.NoError(t, err)
	require.Len(t, s.OneOf, 3)

	pointSchema, _ := schema.For(pt)
	problemSchema, _ := schema.For(problem)
	assert.Equal(t, render(t, pointSchema), render(t, s.OneOf[0]))
	assert.Equal(t, render(t, problemSchema), render(t, s.OneOf[1]))
	assert.Equal(t, render(t, pointSchema), render(t, s.OneOf[2]), "return type is appended even when already declared")
}

func TestOutput_OnlyReturnType(t *testing.T) {
	s, err := schema.Default().Output(nil, nil)
	require.NoError(t, err)
	require.Len(t, s.OneOf, 1)
	assert.Equal(t, "null", s.OneOf[0].Type)
}

func TestOutput_PropagatesFailures(t *testing.T) {
	_, err := schema.Default().Output([]domain.ResponseType{{StatusCode: 200, Type: reflect.TypeFor[chan int]()}}, nil)
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)
}
