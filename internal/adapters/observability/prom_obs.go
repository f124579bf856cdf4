package observability

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rotmanben/TelemetryLink/internal/ports"
)

// Metric names exposed by the collector.
const (
	MetricReadingsPublished = "tlink_readings_published_total"
	MetricProbeErrors       = "tlink_probe_errors_total"
	MetricExports           = "tlink_exports_total"
	MetricCorruptions       = "tlink_export_corruptions_total"
	MetricExportsDropped    = "tlink_export_dropped_total"
	MetricExportLatency     = "tlink_export_latency_seconds"
	MetricSlotAge           = "tlink_slot_age_seconds"
)

// PromObs implements the Observability port with slog for structured logging
// and Prometheus collectors for counters, gauges and latency.
type PromObs struct {
	log      *slog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs(log *slog.Logger) *PromObs {
	if log == nil {
		log = slog.Default()
	}

	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricReadingsPublished,
		Help: "Readings published into the shared slot.",
	})
	probeErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricProbeErrors,
		Help: "Producer ticks skipped because the probe failed.",
	})
	exports := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricExports,
		Help: "Readings acknowledged by the processing peer.",
	})
	corruptions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricCorruptions,
		Help: "Exported readings flagged as inconsistent by validation.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricExportsDropped,
		Help: "Export ticks dropped due to transport failures.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricExportLatency,
		Help:    "Round-trip latency of one export request/reply exchange.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
	slotAge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricSlotAge,
		Help: "Age of the reading currently held in the shared slot.",
	})

	prometheus.MustRegister(published, probeErrors, exports, corruptions, dropped, latency, slotAge)

	return &PromObs{
		log: log,
		counters: map[string]prometheus.Counter{
			MetricReadingsPublished: published,
			MetricProbeErrors:       probeErrors,
			MetricExports:           exports,
			MetricCorruptions:       corruptions,
			MetricExportsDropped:    dropped,
		},
		gauges: map[string]prometheus.Gauge{
			MetricSlotAge: slotAge,
		},
		histos: map[string]prometheus.Observer{
			MetricExportLatency: latency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, attrs(fields)...)
}

func (p *PromObs) LogWarn(msg string, fields ...ports.Field) {
	p.log.Warn(msg, attrs(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	args := attrs(fields)
	if err != nil {
		args = append(args, slog.Any("err", err))
	}
	p.log.Error(msg, args...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func attrs(fields []ports.Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
