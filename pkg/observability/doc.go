/*
Package observability exposes Prometheus metrics for the bridge.

Metrics counts tool invocations by outcome, times them, tracks how many tools
are registered and counts operations skipped during discovery. A nil *Metrics
is valid and records nothing, so callers never need to guard it.
*/
package observability
