/*
Package domain contains the core models shared by the bridge between an HTTP API
and the Model Context Protocol.

It describes what an API operation looks like, what a
tool built from it looks like and what a failed invocation returns. Reflection
over handler methods happens once, when a Handler is created.

# Key Entities

  - Operation: metadata about one API endpoint (group, name, method, route, parameters, responses).
  - Handler: the method that backs an Operation, resolved once from its owning type.
  - Tool: the callable unit exposed to MCP clients, built from one Operation.
  - Problem: the structured payload returned when an invocation fails.
*/
package domain
