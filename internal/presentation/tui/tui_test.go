package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/mcpbridge/internal/presentation/tui"
	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTools() []domain.Tool {
	props := jsonschema.NewProperties()
	props.Set("date", &jsonschema.Schema{Type: "string", Format: "date", Description: "Day of the forecast"})
	props.Set("units", &jsonschema.Schema{Type: "string", Description: "metric | imperial"})

	return []domain.Tool{
		{
			Name:        "Weather_Get",
			Description: "Get the weather forecast for the given date",
			InputSchema: &jsonschema.Schema{Type: "object", Properties: props, Required: []string{"date"}},
			Operation:   domain.Operation{Group: "Weather", Name: "Get", Method: "GET", Pattern: "/weatherforecast/{date}"},
		},
		{
			Name:        "Cities_Where",
			InputSchema: &jsonschema.Schema{Type: "object"},
			Operation:   domain.Operation{Group: "Cities", Name: "Where", Constraints: []string{"GET", "PATCH"}, Pattern: "/cities"},
		},
	}
}

func TestCatalog(t *testing.T) {
	md := tui.Catalog("v2", sampleTools())

	assert.Contains(t, md, "# Tools (v2)")
	assert.Contains(t, md, "## Weather_Get")
	assert.Contains(t, md, "`GET /weatherforecast/{date}`")
	assert.Contains(t, md, "| `date` | string (date) | yes | Day of the forecast |")
	assert.Contains(t, md, `| `+"`units`"+` | string |  | metric \| imperial |`)
	assert.Contains(t, md, "`GET|PATCH /cities`")
	assert.Contains(t, md, "_No arguments._")
}

func TestCatalog_Empty(t *testing.T) {
	md := tui.Catalog("", nil)
	assert.Contains(t, md, "# Tools\n")
	assert.Contains(t, md, "_No tools were discovered._")
}

func TestPrint_NonTerminalIsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	md := tui.Catalog("v1", sampleTools())

	assert.False(t, tui.IsTerminal(&buf))
	require.NoError(t, tui.Print(&buf, md))
	assert.Equal(t, md, buf.String())
}

func TestNewRenderer(t *testing.T) {
	render, err := tui.NewRenderer(80)
	require.NoError(t, err)

	out, err := render("# Weather_Get")
	require.NoError(t, err)
	assert.Contains(t, out, "Weather_Get")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.Contains(t, buf.String(), "┌┬┐")
}
