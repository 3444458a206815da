// Package pipeline ties the stages together: readings enter through
// Ingest, land in the history buffer, and fan out to live subscribers.
package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"envirostream/observability"
	"envirostream/sensor"
	"envirostream/storage"
	"envirostream/stream"
	"envirostream/telemetry"
)

const (
	// DefaultInterval is the steady-state production cadence.
	DefaultInterval = 3 * time.Second

	// Bootstrap defaults: history synthesized at startup so consumers
	// see a populated window immediately.
	DefaultBootstrapCount   = 50
	DefaultBootstrapSpacing = 12 * time.Second

	reportEvery = 30 * time.Second
)

// Pipeline owns the append-then-publish path. It is safe for use by
// one periodic producer plus the MQTT adapter callback.
type Pipeline struct {
	buffer  *storage.Buffer
	hub     *stream.Hub
	metrics *observability.Metrics
	log     *slog.Logger
	total   atomic.Uint64
}

func New(buffer *storage.Buffer, hub *stream.Hub, metrics *observability.Metrics, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{buffer: buffer, hub: hub, metrics: metrics, log: log}
}

// Ingest appends the reading to the history and broadcasts it to all
// open subscriptions. Delivery failures are isolated per subscription
// and surface only as a counter.
func (p *Pipeline) Ingest(r telemetry.Reading) {
	if r.Status == telemetry.StatusCritical {
		p.log.Warn("critical sensor reading",
			"temperature", r.Temperature,
			"humidity", r.Humidity,
			"pressure", r.Pressure)
	}

	p.buffer.Append(r)
	p.total.Add(1)
	p.metrics.ReadingIngested()

	_, failed := p.hub.Publish(r)
	if failed > 0 {
		p.metrics.DeliveriesDropped(failed)
	}
}

// Total returns the number of readings ingested since startup.
func (p *Pipeline) Total() uint64 {
	return p.total.Load()
}

// Bootstrap synthesizes count backdated readings at the given spacing,
// the last one landing at approximately now. Bootstrap readings are
// appended without being broadcast; no subscriber exists yet.
func (p *Pipeline) Bootstrap(gen *sensor.Generator, count int, spacing time.Duration) {
	if count <= 0 {
		return
	}
	base := time.Now().Add(-spacing * time.Duration(count-1))
	for i := 0; i < count; i++ {
		r := gen.Generate(base.Add(spacing * time.Duration(i)))
		p.buffer.Append(r)
		p.total.Add(1)
		p.metrics.ReadingIngested()
	}
	p.log.Info("history bootstrapped", "readings", count, "spacing", spacing)
}

// Run drives the synthetic producer: one reading per tick until the
// context is cancelled. Cancelling a consumer's stream never stops
// this loop; only ctx does.
func (p *Pipeline) Run(ctx context.Context, gen *sensor.Generator, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	report := time.NewTicker(reportEvery)
	defer report.Stop()

	p.log.Info("producer started", "interval", interval)
	for {
		select {
		case <-ticker.C:
			p.Ingest(gen.GenerateNow())
		case <-report.C:
			p.log.Info("pipeline stats",
				"total", p.total.Load(),
				"buffer", p.buffer.Size(),
				"subscriptions", p.hub.Len())
		case <-ctx.Done():
			p.log.Info("producer stopped", "total", p.total.Load())
			return nil
		}
	}
}
