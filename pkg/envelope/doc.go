// Package envelope models handler results that carry either a value or an
// HTTP style result, and deferred results that must be awaited.
//
// A Result[T] describes itself with the schema of T: the wrapper adds nothing
// structurally. Encoding prefers an object result's inner value, then any other
// result, then the plain value. Decoding always yields an object result.
package envelope
