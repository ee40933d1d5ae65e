// Package discovery builds MCP tools from a description provider and registers
// them on an mcp-go server.
package discovery
