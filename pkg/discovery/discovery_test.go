package discovery_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/mcpbridge/pkg/adapter"
	"github.com/aretw0/mcpbridge/pkg/api"
	"github.com/aretw0/mcpbridge/pkg/discovery"
	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/observability"
	"github.com/aretw0/mcpbridge/pkg/ports"
	"github.com/aretw0/mcpbridge/pkg/routing"
	"github.com/aretw0/mcpbridge/pkg/services"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reading struct {
	City string  `json:"city"`
	Temp float64 `json:"temp"`
}

type daily struct{}

func (d *daily) Get(city string) reading { return reading{City: city, Temp: 21} }

type weather struct{}

func (w *weather) Daily_Get(city string) reading { return reading{City: city} }

func (w *weather) Count() int { return 3 }

func (w *weather) Remove(city string) error { return nil }

func (w *weather) Stream(ch chan int) int { return 0 }

type region struct {
	Name  string   `json:"name"`
	Parts []region `json:"parts"`
}

func (w *weather) Regions() region { return region{Name: "south"} }

func (w *weather) Within(r region) int { return len(r.Parts) }

func names(tools []domain.Tool) []string {
	out := make([]string, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.Name)
	}
	return out
}

func TestDiscover_LastGroupByDefault(t *testing.T) {
	a := api.New()
	a.Version("v1").Controller("Weather", (*weather)(nil)).Get("/count", "Count")
	v2 := a.Version("v2").Controller("Weather", (*weather)(nil))
	v2.Get("/count", "Count")
	v2.Delete("/cities/{city}", "Remove").Path("city")
	a.Version("v2").Endpoint("Health", "Ping", http.MethodGet, "/healthz")

	tools := discovery.Discover(a, adapter.Config{})
	assert.Equal(t, []string{"Weather_Count", "Weather_Remove"}, names(tools), "nil handlers are filtered")

	tools = discovery.Discover(a, adapter.Config{}, discovery.WithGroup("v1"))
	assert.Equal(t, []string{"Weather_Count"}, names(tools))

	assert.Empty(t, discovery.Discover(a, adapter.Config{}, discovery.WithGroup("v9")))
	assert.Empty(t, discovery.Discover(api.New(), adapter.Config{}))
}

func TestDiscover_NameCollision(t *testing.T) {
	a := api.New()
	v := a.Version("v1")
	v.Controller("Weather_Daily", (*daily)(nil)).Get("/daily/{city}", "Get").Path("city")
	v.Controller("Weather", (*weather)(nil)).Get("/weather/daily/{city}", "Daily_Get").Path("city")

	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	tools := discovery.Discover(a, adapter.Config{Metrics: m})
	require.Len(t, tools, 1)
	assert.Equal(t, "Weather_Daily_Get", tools[0].Name)
	assert.Equal(t, "Weather_Daily.Get", tools[0].Operation.ID(), "the first declaration wins")

	count, err := testutil.GatherAndCount(reg, "mcpbridge_discovery_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDiscover_SkipsFailures(t *testing.T) {
	a := api.New()
	c := a.Version("v1").Controller("Weather", (*weather)(nil))
	c.Get("/stream", "Stream").Query("ch")
	c.Get("/count", "Count")

	tools := discovery.Discover(a, adapter.Config{})
	assert.Equal(t, []string{"Weather_Count"}, names(tools))
}

func TestDiscover_SkipsRecursiveTypes(t *testing.T) {
	a := api.New()
	c := a.Version("v1").Controller("Weather", (*weather)(nil))
	c.Get("/regions", "Regions")
	c.Post("/regions", "Within").Body("region")
	c.Get("/count", "Count")

	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	tools := discovery.Discover(a, adapter.Config{Metrics: m})
	assert.Equal(t, []string{"Weather_Count"}, names(tools))

	count, err := testutil.GatherAndCount(reg, "mcpbridge_discovery_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRegister(t *testing.T) {
	a := api.New()
	c := a.Version("v1").Controller("Weather", (*weather)(nil))
	c.Get("/count", "Count")
	c.Delete("/cities/{city}", "Remove").Path("city")

	srv := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(true))
	require.NoError(t, discovery.Register(srv, discovery.Discover(a, adapter.Config{})))

	registered := srv.ListTools()
	require.Len(t, registered, 2)

	count := srv.GetTool("Weather_Count")
	require.NotNil(t, count)
	assert.True(t, *count.Tool.Annotations.ReadOnlyHint)
	assert.Contains(t, string(count.Tool.RawInputSchema), `"type":"object"`)
	assert.Contains(t, string(count.Tool.RawOutputSchema), "oneOf")

	remove := srv.GetTool("Weather_Remove")
	require.NotNil(t, remove)
	assert.True(t, *remove.Tool.Annotations.DestructiveHint)
	assert.True(t, *remove.Tool.Annotations.IdempotentHint)
	assert.Contains(t, string(remove.Tool.RawInputSchema), `"required":["city"]`)
}

func TestRegistrar(t *testing.T) {
	a := api.New()
	a.Version("v1").Controller("Weather", (*weather)(nil)).Get("/count", "Count")

	srv := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(true))
	var reg ports.ToolRegistrar = discovery.Registrar{Server: srv}
	require.NoError(t, reg.RegisterTools(discovery.Discover(a, adapter.Config{})))

	assert.NotNil(t, srv.GetTool("Weather_Count"))
}

func TestRegister_Call(t *testing.T) {
	a := api.New()
	a.Version("v1").Controller("Weather", (*weather)(nil)).Get("/count", "Count")

	srv := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(true))
	require.NoError(t, discovery.Register(srv, discovery.Discover(a, adapter.Config{})))
	st := srv.GetTool("Weather_Count")
	require.NotNil(t, st)

	p := services.NewProvider()
	p.MustAddScoped(routing.NewAmbient)
	ctx := routing.WithRequest(context.Background(), httptest.NewRequest(http.MethodPost, "/mcp", nil))
	ctx = services.WithProvider(ctx, p)

	var req mcp.CallToolRequest
	req.Params.Name = "Weather_Count"
	req.Params.Arguments = map[string]any{}

	res, err := st.Handler(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	structured, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":3}`, string(structured))

	res, err = st.Handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError, "no service provider attached")
}

func TestResult(t *testing.T) {
	res := discovery.Result(reading{City: "Lisbon", Temp: 18.5})
	assert.False(t, res.IsError)
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"city":"Lisbon","temp":18.5}`, string(data))
	require.Len(t, res.Content, 1)
	assert.JSONEq(t, `{"city":"Lisbon","temp":18.5}`, res.Content[0].(mcp.TextContent).Text)

	res = discovery.Result([]int{1, 2})
	data, err = json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":[1,2]}`, string(data))

	p := &domain.Problem{Title: "failed", Status: 500, Detail: "boom"}
	res = discovery.Result(p)
	assert.True(t, res.IsError)
	assert.Same(t, p, res.StructuredContent)
}
