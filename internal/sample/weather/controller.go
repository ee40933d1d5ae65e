package weather

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aretw0/mcpbridge/pkg/api"
	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/envelope"
	"github.com/aretw0/mcpbridge/pkg/query"
	"github.com/oapi-codegen/runtime/types"
	"github.com/pkg/errors"
)

// Controller serves forecasts. A new controller is built for every call.
type Controller struct {
	Store Store `inject:""`
}

func (c *Controller) Get(ctx context.Context, date types.Date) (envelope.Result[Forecast], error) {
	f, ok, err := c.Store.Get(ctx, date)
	if err != nil {
		return envelope.Result[Forecast]{}, errors.WithStack(err)
	}
	if !ok {
		return envelope.NotFound[Forecast](), nil
	}
	return envelope.Ok(f), nil
}

func (c *Controller) GetMultiple(ctx context.Context, opts query.Options[Forecast]) ([]Forecast, error) {
	all, err := c.Store.List(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return opts.Apply(all), nil
}

func (c *Controller) Summaries(ctx context.Context, opts query.Options[Forecast]) ([]map[string]any, error) {
	all, err := c.Store.List(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return opts.Project(opts.Apply(all))
}

// Create stores f in the background. The temperature in Fahrenheit is derived.
func (c *Controller) Create(ctx context.Context, f Forecast) *envelope.Future[envelope.Result[Forecast]] {
	return envelope.Go(func() (envelope.Result[Forecast], error) {
		if f.Date.IsZero() {
			return envelope.BadRequest[Forecast](&domain.Problem{
				Title:  "Invalid forecast",
				Status: http.StatusBadRequest,
				Detail: "date is required",
			}), nil
		}
		f.TemperatureF = Fahrenheit(f.TemperatureC)
		if err := c.Store.Put(ctx, f); err != nil {
			return envelope.Result[Forecast]{}, fmt.Errorf("storing forecast %s: %w", f.Date, err)
		}
		return envelope.Created(f), nil
	})
}

func (c *Controller) Delete(ctx context.Context, date types.Date) (envelope.Result[Forecast], error) {
	ok, err := c.Store.Delete(ctx, date)
	if err != nil {
		return envelope.Result[Forecast]{}, errors.WithStack(err)
	}
	if !ok {
		return envelope.NotFound[Forecast](), nil
	}
	return envelope.NoContent[Forecast](), nil
}

// Register declares the Weather API: v1 only reads single days, v2 is the
// full API.
func Register(a *api.API) {
	v1 := a.Version("v1").Controller("Weather", (*Controller)(nil))
	v1.Get("/weatherforecast/{date}", "Get").
		Describe("Get the weather forecast for the given date").
		Path("date")

	v2 := a.Version("v2")
	c := v2.Controller("Weather", (*Controller)(nil))
	c.Get("/weatherforecast/{date}", "Get").
		Describe("Get the weather forecast for the given date").
		Path("date").
		Doc("date", "Day of the forecast (YYYY-MM-DD)").
		Produces(http.StatusOK, Forecast{}).
		Produces(http.StatusNotFound, domain.Problem{})
	c.Get("/weatherforecast", "GetMultiple").
		Describe("List forecasts. Supports $filter, $orderby, $top, $skip and $count").
		QueryOptions("options")
	c.Get("/weatherforecast/summaries", "Summaries").
		Describe("List forecasts projected to the properties named by $select").
		QueryOptions("options")
	c.Post("/weatherforecast", "Create").
		Describe("Store a forecast").
		Body("forecast").
		Required("forecast").
		Produces(http.StatusCreated, Forecast{}).
		Produces(http.StatusBadRequest, domain.Problem{})
	c.Delete("/weatherforecast/{date}", "Delete").
		Describe("Delete the forecast for the given date").
		Path("date").
		Produces(http.StatusNoContent, nil).
		Produces(http.StatusNotFound, domain.Problem{})
	v2.Endpoint("Health", "Ping", http.MethodGet, "/healthz")
}
