// Package schema composes JSON Schemas for tool inputs and outputs.
//
// Reflection of ordinary Go types is delegated to github.com/invopop/jsonschema.
// This package owns the policy on top of it:
//
//   - any type implementing Writer renders itself, at every nesting level;
//   - schemas are inlined (no $defs) and anonymous (no $id or $schema);
//   - an input schema is an object with one property per declared parameter,
//     except query-options parameters whose properties are merged into the top level;
//   - an output schema is a oneOf over the declared response types, deduplicated
//     by type identity, followed by the declared return type.
//
// Reflection failures (unsupported kinds such as channels or functions) are
// returned as errors instead of panics.
package schema
