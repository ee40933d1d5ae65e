// Package mcp hosts the bridge's MCP server over streamable HTTP and stdio.
package mcp
