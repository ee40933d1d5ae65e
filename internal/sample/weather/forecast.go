package weather

import (
	"math/rand/v2"
	"time"

	"github.com/oapi-codegen/runtime/types"
)

// Summaries are the forecast descriptions, coldest first.
var Summaries = []string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild", "Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

// Forecast is the weather expected on one day.
type Forecast struct {
	Date         types.Date `json:"date" jsonschema:"description=Day of the forecast"`
	TemperatureC int        `json:"temperatureC" jsonschema:"description=Temperature in degrees Celsius"`
	TemperatureF int        `json:"temperatureF" jsonschema:"description=Temperature in degrees Fahrenheit"`
	Summary      string     `json:"summary,omitempty"`
}

// NewForecast fills in the Fahrenheit temperature.
func NewForecast(date time.Time, celsius int, summary string) Forecast {
	return Forecast{
		Date:         types.Date{Time: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)},
		TemperatureC: celsius,
		TemperatureF: Fahrenheit(celsius),
		Summary:      summary,
	}
}

// Fahrenheit converts degrees Celsius, truncating.
func Fahrenheit(celsius int) int {
	return 32 + int(float64(celsius)/0.5556)
}

// Generate returns one forecast per day starting at start. The same seed
// always yields the same forecasts.
func Generate(start time.Time, days int, seed uint64) []Forecast {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Forecast, 0, days)
	for i := 0; i < days; i++ {
		c := rng.IntN(75) - 20
		out = append(out, NewForecast(start.AddDate(0, 0, i), c, summaryFor(c)))
	}
	return out
}

func summaryFor(celsius int) string {
	// -20..54 spread over the summaries
	i := (celsius + 20) * len(Summaries) / 75
	return Summaries[max(0, min(i, len(Summaries)-1))]
}
