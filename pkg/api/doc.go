/*
Package api declares the operations of an HTTP API on plain Go types.

Operations are grouped by API version and bound to controller methods by name.
Method signatures are inspected once, when the route is declared; parameters
are named positionally, skipping a leading context.Context.

	a := api.New()
	c := a.Version("v1").Controller("Weather", (*weather.Controller)(nil))
	c.Get("/weather/{date}", "Get").
		Describe("Get the weather forecast for the given date").
		Path("date").
		Produces(http.StatusNotFound, domain.Problem{})

An *API is a ports.DescriptionProvider.
*/
package api
