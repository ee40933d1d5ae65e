// Package openapi publishes a description group as an OpenAPI 3 document,
// built from the same schemas the MCP tools expose.
package openapi
