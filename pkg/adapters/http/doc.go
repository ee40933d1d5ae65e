// Package http assembles the bridge's HTTP surface: the natively routed API,
// the MCP endpoint, OpenAPI documents, metrics and a health probe.
package http
