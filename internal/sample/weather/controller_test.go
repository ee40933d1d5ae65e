package weather_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/aretw0/mcpbridge/internal/sample/weather"
	"github.com/aretw0/mcpbridge/pkg/api"
	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/aretw0/mcpbridge/pkg/envelope"
	"github.com/aretw0/mcpbridge/pkg/ports"
	"github.com/aretw0/mcpbridge/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func controller() *weather.Controller {
	return &weather.Controller{Store: weather.NewMemoryStore(weather.Generate(day("2026-01-01").Time, 30, 1)...)}
}

func TestController_Get(t *testing.T) {
	c := controller()
	ctx := context.Background()

	res, err := c.Get(ctx, day("2026-01-05"))
	require.NoError(t, err)
	f, ok := envelope.Unwrap(res).(weather.Forecast)
	require.True(t, ok)
	assert.Equal(t, "2026-01-05", f.Date.String())

	res, err = c.Get(ctx, day("2027-01-01"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, envelope.Status(res, 0))
}

func TestController_GetMultiple(t *testing.T) {
	opts, err := query.Parse[weather.Forecast](map[string]string{"top": "5", "orderby": "date desc"})
	require.NoError(t, err)

	got, err := controller().GetMultiple(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "2026-01-30", got[0].Date.String())
	assert.Equal(t, "2026-01-26", got[4].Date.String())
}

func TestController_Summaries(t *testing.T) {
	opts, err := query.Parse[weather.Forecast](map[string]string{"select": "date,summary", "top": "2"})
	require.NoError(t, err)

	got, err := controller().Summaries(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0], 2)
	assert.Contains(t, got[0], "summary")
}

func TestController_CreateAndDelete(t *testing.T) {
	c := controller()
	ctx := context.Background()

	v, err := c.Create(ctx, weather.Forecast{Date: day("2026-06-01"), TemperatureC: 25, Summary: "Warm"}).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, envelope.Status(v, 0))
	created := envelope.Unwrap(v).(weather.Forecast)
	assert.Equal(t, 76, created.TemperatureF)

	v, err = c.Create(ctx, weather.Forecast{Summary: "Nowhen"}).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, envelope.Status(v, 0))
	assert.IsType(t, &domain.Problem{}, envelope.Unwrap(v))

	res, err := c.Delete(ctx, day("2026-06-01"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, envelope.Status(res, 0))

	res, err = c.Delete(ctx, day("2026-06-01"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, envelope.Status(res, 0))
}

func TestController_StoreFailure(t *testing.T) {
	s := weather.NewMemoryStore()
	require.NoError(t, s.Close())
	c := &weather.Controller{Store: s}

	_, err := c.GetMultiple(context.Background(), query.Options[weather.Forecast]{})
	var invalid *weather.InvalidOperationError
	assert.ErrorAs(t, err, &invalid)
}

func TestRegister(t *testing.T) {
	a := api.New()
	weather.Register(a)
	require.NoError(t, a.Err())

	groups := a.Groups()
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Operations, 1)
	assert.Len(t, groups[1].Operations, 6)

	ports.RunDescriptionProviderContract(t, a)
}
