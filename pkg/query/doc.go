/*
Package query implements OData style query options for tool arguments.

On the wire every option carries the "$" sigil ($filter, $orderby, $top, $skip,
$select, $count, ...). The sigil is stripped when decoding and added back when
encoding, so Decode(Encode(x)) yields the same raw values.

An Options[T] is scoped to one entity type. Parsing resolves the EntityModel of
T through a process wide cache and rejects option names or properties it does
not know. Apply evaluates the options against an in-memory slice.

	opts, err := query.Decode[Forecast]([]byte(`{"$top":5,"$orderby":"date desc"}`))
	page := opts.Apply(forecasts)
*/
package query
