// Package observability exposes the pipeline's counters and gauges in
// Prometheus format. The core owns the numbers; presentation stays
// here.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registered collectors. All methods are safe on a
// nil receiver so the core packages can run without a metrics backend
// in tests.
type Metrics struct {
	registry          *prometheus.Registry
	readingsTotal     prometheus.Counter
	deliveriesDropped prometheus.Counter
	outOfRangeTotal   prometheus.Counter
}

// NewMetrics registers the collectors on a fresh registry. bufferSize
// and activeSubs are sampled on scrape.
func NewMetrics(bufferSize, activeSubs func() float64) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		readingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "envirostream_readings_total",
			Help: "Total sensor readings ingested into the pipeline.",
		}),
		deliveriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "envirostream_deliveries_dropped_total",
			Help: "Subscriptions closed due to delivery failure.",
		}),
		outOfRangeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "envirostream_out_of_range_total",
			Help: "Readings accepted with out-of-range values.",
		}),
	}

	m.registry.MustRegister(
		m.readingsTotal,
		m.deliveriesDropped,
		m.outOfRangeTotal,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "envirostream_buffer_size",
			Help: "Current number of readings in the history buffer.",
		}, bufferSize),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "envirostream_active_subscriptions",
			Help: "Currently open live-update subscriptions.",
		}, activeSubs),
	)
	return m
}

func (m *Metrics) ReadingIngested() {
	if m == nil {
		return
	}
	m.readingsTotal.Inc()
}

func (m *Metrics) DeliveriesDropped(n int) {
	if m == nil {
		return
	}
	m.deliveriesDropped.Add(float64(n))
}

func (m *Metrics) OutOfRange() {
	if m == nil {
		return
	}
	m.outOfRangeTotal.Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
