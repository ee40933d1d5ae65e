package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mcpbridge"

// Metrics holds the bridge collectors.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	tools       prometheus.Gauge
	skipped     *prometheus.CounterVec
	gatherer    prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses a fresh private registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_invocations_total",
				Help:      "Total number of tool invocations by outcome",
			},
			[]string{"tool", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_duration_seconds",
				Help:      "Duration of tool invocations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		tools: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tools_registered",
			Help:      "Number of tools exposed to MCP clients",
		}),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "discovery_failures_total",
				Help:      "Operations skipped because no tool could be built for them",
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{m.invocations, m.duration, m.tools, m.skipped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m, nil
}

// ObserveInvocation records one finished tool call.
func (m *Metrics) ObserveInvocation(tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(tool, outcome).Inc()
	m.duration.WithLabelValues(tool).Observe(d.Seconds())
}

// DiscoveryFailure records an operation that was skipped.
func (m *Metrics) DiscoveryFailure(operation string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(operation).Inc()
}

// SetTools records the number of registered tools.
func (m *Metrics) SetTools(n int) {
	if m == nil {
		return
	}
	m.tools.Set(float64(n))
}

// Handler serves the registry the metrics were registered with.
// It falls back to the default gatherer.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
