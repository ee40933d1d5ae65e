package mcpbridge

// Version is the bridge release, reported as the MCP server version.
const Version = "0.4.0"
