/*
Package mcpbridge exposes the operations of an HTTP API as Model Context Protocol tools.

An API is declared once, on controller types, with package api. The bridge turns
every operation of the selected API version into an MCP tool whose input schema
describes the operation's parameters and whose output schema is the union of
its declared responses. Calling a tool replays the call as a request against
the operation's handler, inside a fresh service scope, so handlers observe the
same routing metadata, services and result envelopes they would under plain HTTP.

# Usage

	a := api.New()
	c := a.Version("v1").Controller("Weather", (*WeatherController)(nil))
	c.Get("/weather/{date}", "Get").Path("date")

	provider := services.NewProvider()
	provider.AddSingleton(store)

	b, err := mcpbridge.New(a, provider, mcpbridge.WithBaseURL("http://localhost:8080"))
	if err != nil {
		log.Fatal(err)
	}

	// Serve the API, /mcp, /openapi.json, /openapi.yaml, /metrics and /healthz.
	if err := b.ListenAndServe(ctx, ":8080"); err != nil {
		log.Fatal(err)
	}

The same bridge can serve MCP over stdio with ServeStdio.

# Failures

Tool calls never fail at the protocol level. Handler errors, panics and
misconfiguration are returned as a problem payload (title, status, detail and
the root cause's type and stack trace) flagged as an error result.
*/
package mcpbridge
