package api_test

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	"github.com/aretw0/mcpbridge/pkg/api"
	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type notes struct{}

func (n *notes) Get(ctx context.Context, id int) (note, error) { return note{ID: id}, nil }

func (n *notes) Create(body note) note { return body }

func (n *notes) Search(text string, limit int) []note { return nil }

func declare() *api.API {
	a := api.New()

	v1 := a.Version("v1")
	v1.Controller("Notes", (*notes)(nil)).Get("/notes/{id}", "Get").Path("id")

	v2 := a.Version("v2")
	c := v2.Controller("Notes", (*notes)(nil))
	c.Get("/notes/{id}", "Get").
		Describe("Get a note").
		Path("id").
		Doc("id", "note identifier").
		Produces(http.StatusOK, note{}).
		Produces(http.StatusNotFound, domain.Problem{}).
		Produces(http.StatusNoContent, nil)
	c.Route("", "/notes", "Create").Methods(http.MethodPost, http.MethodPut).Body("body").Required("body")
	c.Get("/notes", "Search").Query("text", "limit").Defaults(map[string]string{"api-version": "2"})
	v2.Endpoint("Health", "Ping", http.MethodGet, "/healthz")

	return a
}

func TestAPI_Groups(t *testing.T) {
	a := declare()
	require.NoError(t, a.Err())

	groups := a.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "v1", groups[0].Name)
	assert.Equal(t, "v2", groups[1].Name)
	assert.Same(t, a.Version("v1"), a.Version("v1"))

	ops := groups[1].Operations
	require.Len(t, ops, 4)

	get := ops[0]
	assert.Equal(t, "Notes_Get", get.ToolName())
	assert.Equal(t, http.MethodGet, get.Method)
	assert.Equal(t, "Get a note", get.Description)
	require.Len(t, get.Params, 1)
	assert.Equal(t, domain.Param{Name: "id", Type: reflect.TypeFor[int](), Source: domain.SourcePath, Description: "note identifier"}, get.Params[0])
	assert.Equal(t, reflect.TypeFor[note](), get.Returns)
	assert.Equal(t, []domain.ResponseType{
		{StatusCode: 200, Type: reflect.TypeFor[note]()},
		{StatusCode: 404, Type: reflect.TypeFor[domain.Problem]()},
		{StatusCode: 204},
	}, get.Responses)

	create := ops[1]
	assert.Empty(t, create.Method)
	m, ok := create.HTTPMethod()
	assert.True(t, ok)
	assert.Equal(t, http.MethodPost, m)
	assert.True(t, create.Params[0].Required)
	assert.Equal(t, domain.SourceBody, create.Params[0].Source)

	search := ops[2]
	assert.Equal(t, map[string]string{"api-version": "2"}, search.RouteValues)
	assert.Equal(t, []string{"text", "limit"}, []string{search.Params[0].Name, search.Params[1].Name})

	assert.Nil(t, ops[3].Handler)
}

func TestAPI_GroupsAreSnapshots(t *testing.T) {
	a := declare()
	first := a.Groups()
	first[1].Operations[2].RouteValues["api-version"] = "changed"
	first[1].Operations[0].Params[0].Name = "changed"

	second := a.Groups()
	assert.Equal(t, "2", second[1].Operations[2].RouteValues["api-version"])
	assert.Equal(t, "id", second[1].Operations[0].Params[0].Name)
}

func TestAPI_Errors(t *testing.T) {
	a := api.New()
	c := a.Version("v1").Controller("Notes", (*notes)(nil))
	c.Get("/missing", "Missing")
	c.Get("/notes", "Search").Query("text")
	c.Get("/notes/{id}", "Get").Path("id", "extra").Doc("nope", "x")

	err := a.Err()
	require.Error(t, err)
	assert.ErrorContains(t, err, "method not found")
	assert.ErrorContains(t, err, "1 of 2 parameters are not declared")
	assert.ErrorContains(t, err, `parameter "extra" does not match`)
	assert.ErrorContains(t, err, `unknown parameter "nope"`)

	ops := a.Groups()[0].Operations
	assert.Nil(t, ops[0].Handler)
	assert.Equal(t, "arg1", ops[1].Params[1].Name)
}

func TestAPI_Contract(t *testing.T) {
	ports.RunDescriptionProviderContract(t, declare())
}
