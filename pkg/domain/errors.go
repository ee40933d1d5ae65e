package domain

import "errors"

// ErrMissingServices is returned when a tool is invoked without a service provider attached to the context.
var ErrMissingServices = errors.New("service provider is not attached to the context")

// ErrMissingRequest is returned when the invocation scope cannot provide an ambient HTTP request.
var ErrMissingRequest = errors.New("ambient http request is not available")

// ErrMissingMethod is returned when an operation declares neither an HTTP method nor a method constraint.
var ErrMissingMethod = errors.New("operation does not declare an http method")

// ErrNoHandler is returned when an operation is not backed by a method.
var ErrNoHandler = errors.New("operation has no handler")

// ErrDuplicateTool is returned when two operations reduce to the same tool name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ErrUnknownService is returned when a scope cannot resolve a requested type.
var ErrUnknownService = errors.New("unknown service")
