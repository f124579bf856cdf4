package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rotmanben/TelemetryLink/internal/domain"
	"github.com/rotmanben/TelemetryLink/internal/ports"
)

// Producer samples one probe on a fixed interval and publishes each reading
// into the shared slot. Producers never block on each other or on the export
// loop; the slot is the only coupling point.
type Producer struct {
	Probe    ports.Probe
	Store    ports.ReadingStore
	Interval time.Duration
	Warmup   time.Duration
	Obs      ports.Observability
}

// Run loops until the context is cancelled. Cancellation is observed at the
// top of every iteration; a tick in flight is never interrupted.
func (p *Producer) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	p.Obs.LogInfo("producer_started", ports.Field{Key: "sensor_id", Value: p.Probe.SensorID()})

	if !p.warmUp(ctx) {
		p.Obs.LogInfo("producer_stopped", ports.Field{Key: "sensor_id", Value: p.Probe.SensorID()})
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Obs.LogInfo("producer_stopped", ports.Field{Key: "sensor_id", Value: p.Probe.SensorID()})
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// warmUp primes probes that need a previous counter snapshot and waits out
// the configured delay so the first published reading covers a real interval.
// It reports false if the context was cancelled while waiting.
func (p *Producer) warmUp(ctx context.Context) bool {
	if p.Warmup <= 0 {
		return true
	}
	if _, err := p.Probe.Sample(); err != nil && !errors.Is(err, ports.ErrWarmingUp) {
		p.Obs.LogError("probe_warmup_failed", err,
			ports.Field{Key: "sensor_id", Value: p.Probe.SensorID()})
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.Warmup):
		return true
	}
}

func (p *Producer) tick() {
	value, err := p.Probe.Sample()
	if err != nil {
		if errors.Is(err, ports.ErrWarmingUp) {
			return
		}
		// Acquisition failure: skip the tick, publish nothing.
		p.Obs.LogError("probe_sample_failed", err,
			ports.Field{Key: "sensor_id", Value: p.Probe.SensorID()})
		p.Obs.IncCounter("tlink_probe_errors_total", 1)
		return
	}

	p.Store.Publish(domain.NewReading(p.Probe.SensorID(), value))
	p.Obs.IncCounter("tlink_readings_published_total", 1)
}
