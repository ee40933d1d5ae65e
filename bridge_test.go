package mcpbridge_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/mcpbridge"
	"github.com/aretw0/mcpbridge/internal/sample/weather"
	"github.com/aretw0/mcpbridge/pkg/api"
	"github.com/aretw0/mcpbridge/pkg/routing"
	"github.com/aretw0/mcpbridge/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	weather.Store
}

func (failingStore) List(ctx context.Context) ([]weather.Forecast, error) {
	return nil, &weather.InvalidOperationError{Msg: "boom"}
}

func newBridge(t *testing.T, store weather.Store, opts ...mcpbridge.Option) (*mcpbridge.Bridge, *services.Provider) {
	t.Helper()
	a := api.New()
	weather.Register(a)

	p := services.NewProvider()
	services.Singleton[weather.Store](p, store)

	b, err := mcpbridge.New(a, p, opts...)
	require.NoError(t, err)
	return b, p
}

func sampleStore() weather.Store {
	return seededStore(30)
}

func seededStore(days int) weather.Store {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return weather.NewMemoryStore(weather.Generate(start, days, 42)...)
}

// call sends one JSON-RPC request and decodes the response.
func call(t *testing.T, b *mcpbridge.Bridge, p *services.Provider, method string, params any) map[string]any {
	t.Helper()
	msg, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	require.NoError(t, err)

	ctx := routing.WithRequest(context.Background(), httptest.NewRequest(http.MethodPost, "/mcp", nil))
	ctx = services.WithProvider(ctx, p)

	res := b.MCPServer().HandleMessage(ctx, msg)
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Nil(t, out["error"], "unexpected JSON-RPC error: %s", data)
	result, ok := out["result"].(map[string]any)
	require.True(t, ok, "no result in %s", data)
	return result
}

func TestBridge_ToolsList(t *testing.T) {
	b, p := newBridge(t, sampleStore())

	result := call(t, b, p, "tools/list", map[string]any{})
	tools, ok := result["tools"].([]any)
	require.True(t, ok)

	byName := make(map[string]map[string]any)
	for _, raw := range tools {
		tool := raw.(map[string]any)
		byName[tool["name"].(string)] = tool
	}
	assert.Len(t, byName, 5)
	for _, name := range []string{"Weather_Get", "Weather_GetMultiple", "Weather_Summaries", "Weather_Create", "Weather_Delete"} {
		assert.Contains(t, byName, name)
	}

	get := byName["Weather_Get"]
	assert.Equal(t, "Get the weather forecast for the given date", get["description"])
	output := get["outputSchema"].(map[string]any)
	oneOf := output["oneOf"].([]any)
	require.Len(t, oneOf, 3)
	assert.Contains(t, oneOf[0].(map[string]any)["properties"], "temperatureC")
	assert.Contains(t, oneOf[1].(map[string]any)["properties"], "title")

	input := byName["Weather_GetMultiple"]["inputSchema"].(map[string]any)
	assert.Contains(t, input["properties"], "$top")
	assert.Contains(t, input["properties"], "$orderby")

	annotations := byName["Weather_Delete"]["annotations"].(map[string]any)
	assert.Equal(t, true, annotations["destructiveHint"])
}

func TestBridge_CallGetMultiple(t *testing.T) {
	b, p := newBridge(t, seededStore(1000))

	result := call(t, b, p, "tools/call", map[string]any{
		"name":      "Weather_GetMultiple",
		"arguments": map[string]any{"$top": 5, "$orderby": "date desc"},
	})
	assert.NotEqual(t, true, result["isError"])

	structured := result["structuredContent"].(map[string]any)
	items := structured["result"].([]any)
	require.Len(t, items, 5)
	assert.Equal(t, "2028-09-26", items[0].(map[string]any)["date"])
	assert.Equal(t, "2028-09-22", items[4].(map[string]any)["date"])
}

func TestBridge_CallGet(t *testing.T) {
	b, p := newBridge(t, sampleStore())

	result := call(t, b, p, "tools/call", map[string]any{
		"name":      "Weather_Get",
		"arguments": map[string]any{"date": "2026-01-05"},
	})
	structured := result["structuredContent"].(map[string]any)
	assert.Equal(t, "2026-01-05", structured["date"])

	result = call(t, b, p, "tools/call", map[string]any{
		"name":      "Weather_Get",
		"arguments": map[string]any{"date": "1999-01-01"},
	})
	structured = result["structuredContent"].(map[string]any)
	assert.Equal(t, float64(http.StatusNotFound), structured["statusCode"])
}

func TestBridge_CallProblem(t *testing.T) {
	b, p := newBridge(t, failingStore{})

	result := call(t, b, p, "tools/call", map[string]any{
		"name":      "Weather_GetMultiple",
		"arguments": map[string]any{},
	})
	assert.Equal(t, true, result["isError"])

	problem := result["structuredContent"].(map[string]any)
	assert.Equal(t, "boom", problem["detail"])
	assert.Equal(t, float64(500), problem["status"])
	assert.Equal(t, "An error occurred while invoking Weather.GetMultiple", problem["title"])

	ext := problem["extensions"].(map[string]any)
	assert.Equal(t, "InvalidOperationError", ext["exceptionType"])
	assert.NotEmpty(t, ext["stackTrace"])
}

func TestBridge_WithGroup(t *testing.T) {
	b, _ := newBridge(t, sampleStore(), mcpbridge.WithGroup("v1"))

	require.Len(t, b.Tools(), 1)
	assert.Equal(t, "Weather_Get", b.Tools()[0].Name)
	assert.Equal(t, "v1", b.Group().Name)
}

func TestBridge_Handler(t *testing.T) {
	b, _ := newBridge(t, sampleStore())
	h, err := b.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weatherforecast/2026-01-05", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"date":"2026-01-05"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weatherforecast?$top=2&$orderby=date", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []weather.Forecast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "2026-01-01", listed[0].Date.String())

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"Weather_Get","arguments":{"date":"2026-01-02"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2026-01-02")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "mcpbridge_tool_invocations_total")
}

func TestBridge_OpenAPI(t *testing.T) {
	b, _ := newBridge(t, sampleStore())

	doc, err := b.OpenAPI()
	require.NoError(t, err)
	assert.Equal(t, "v2", doc.Info.Version)
	assert.NotNil(t, doc.Paths.Value("/weatherforecast/{date}"))
	assert.NotNil(t, doc.Paths.Value("/weatherforecast/summaries"))
}

func TestNew_InvalidDescription(t *testing.T) {
	a := api.New()
	a.Version("v1").Controller("Weather", (*weather.Controller)(nil)).Get("/nowhere", "Missing")

	_, err := mcpbridge.New(a, services.NewProvider())
	assert.Error(t, err)

	_, err = mcpbridge.New(api.New(), nil)
	assert.Error(t, err)
}
