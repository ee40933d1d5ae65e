// Package routing is the contract between tool invocations and the HTTP host.
//
// It carries the ambient request through the context, re-points a request at
// an operation so chi helpers (chi.URLParam, chi.RouteContext) behave as if the
// request had been routed natively, generates paths from route templates and
// executes an operation's handler inside a service scope.
package routing
