/*
Package adapter turns one API operation into an MCP tool.

New builds the tool name ("{group}_{operation}"), description, input schema and
output schema, and returns an invocation closure that replays a tool call as a
request against the operation's handler:

 1. resolve the service provider attached to the call context;
 2. open a scope, closed on every exit path;
 3. resolve the ambient request and codec from the scope;
 4. rewrite the request for the operation (method, path, route metadata);
 5. bind parameters, defaulting those that fail to decode;
 6. construct the handler's owner, call it and await deferred results;
 7. unwrap result envelopes.

Every failure, panics included, is returned as a *domain.Problem value.
*/
package adapter
