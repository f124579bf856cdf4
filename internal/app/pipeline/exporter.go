package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rotmanben/TelemetryLink/internal/app/validate"
	"github.com/rotmanben/TelemetryLink/internal/domain"
	"github.com/rotmanben/TelemetryLink/internal/ports"
)

// ExportStats are the running data-quality counters. They are owned
// exclusively by the export loop and need no synchronization.
type ExportStats struct {
	TotalReads      int
	CorruptionCount int
	DroppedTicks    int
}

// CorruptionRate is the percentage of acknowledged exports that were flagged
// inconsistent.
func (s ExportStats) CorruptionRate() float64 {
	if s.TotalReads == 0 {
		return 0
	}
	return float64(s.CorruptionCount) / float64(s.TotalReads) * 100.0
}

// Exporter reads the shared slot on a fixed cadence, validates the reading,
// and forwards it to the processing peer over the request channel. Peer
// failures degrade to dropped ticks; the fixed-interval loop itself is the
// retry mechanism for the next reading.
type Exporter struct {
	Store          ports.ReadingStore
	Channel        ports.RequestChannel
	Interval       time.Duration
	RequestTimeout time.Duration
	StatsEvery     int
	Obs            ports.Observability

	stats ExportStats
}

// Run loops until the context is cancelled, then emits final statistics and
// returns them. Cancellation is observed at the top of every iteration.
func (e *Exporter) Run(ctx context.Context) ExportStats {
	interval := e.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	if e.StatsEvery <= 0 {
		e.StatsEvery = 50
	}
	if e.RequestTimeout <= 0 {
		e.RequestTimeout = 2 * time.Second
	}

	e.Obs.LogInfo("exporter_started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.Obs.LogInfo("export_final_stats",
				ports.Field{Key: "total_reads", Value: e.stats.TotalReads},
				ports.Field{Key: "corruptions", Value: e.stats.CorruptionCount},
				ports.Field{Key: "corruption_rate_pct", Value: e.stats.CorruptionRate()})
			return e.stats
		case <-ticker.C:
			e.exportOnce(ctx)
		}
	}
}

func (e *Exporter) exportOnce(ctx context.Context) {
	reading := e.Store.Read()
	if !reading.Valid {
		// Nothing has been published yet; skip the tick entirely.
		return
	}

	consistent, reasons := validate.Check(reading)
	if !consistent {
		e.Obs.LogError("data_corruption", errors.New(strings.Join(reasons, "; ")),
			ports.Field{Key: "sensor_id", Value: reading.SensorID},
			ports.Field{Key: "value", Value: reading.Value},
			ports.Field{Key: "timestamp", Value: reading.Timestamp})
	}

	payload, err := json.Marshal(domain.NewExportMessage(reading, consistent))
	if err != nil {
		e.Obs.LogError("export_marshal_failed", err)
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.RequestTimeout)
	defer cancel()

	start := time.Now()
	raw, err := e.Channel.Request(reqCtx, payload)
	if err != nil {
		e.dropTick("export_request_failed", err)
		return
	}
	e.Obs.ObserveLatency("tlink_export_latency_seconds", time.Since(start).Seconds())

	var reply domain.ExportReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		e.dropTick("export_reply_malformed", err)
		return
	}

	e.stats.TotalReads++
	e.Obs.IncCounter("tlink_exports_total", 1)
	if !consistent {
		e.stats.CorruptionCount++
		e.Obs.IncCounter("tlink_export_corruptions_total", 1)
	}

	if reply.Status == domain.StatusAlert {
		e.Obs.LogWarn("peer_alert",
			ports.Field{Key: "sensor_id", Value: reply.SensorID},
			ports.Field{Key: "value", Value: reading.Value})
	}

	if e.stats.TotalReads%e.StatsEvery == 0 {
		e.Obs.LogInfo("export_stats",
			ports.Field{Key: "total_reads", Value: e.stats.TotalReads},
			ports.Field{Key: "corruptions", Value: e.stats.CorruptionCount},
			ports.Field{Key: "corruption_rate_pct", Value: e.stats.CorruptionRate()})
	}
}

func (e *Exporter) dropTick(msg string, err error) {
	e.stats.DroppedTicks++
	e.Obs.LogError(msg, err)
	e.Obs.IncCounter("tlink_export_dropped_total", 1)
}
