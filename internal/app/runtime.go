package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rotmanben/TelemetryLink/internal/adapters/channel"
	"github.com/rotmanben/TelemetryLink/internal/adapters/observability"
	"github.com/rotmanben/TelemetryLink/internal/adapters/probe"
	"github.com/rotmanben/TelemetryLink/internal/adapters/store"
	"github.com/rotmanben/TelemetryLink/internal/app/config"
	"github.com/rotmanben/TelemetryLink/internal/app/pipeline"
	"github.com/rotmanben/TelemetryLink/internal/ports"
)

// Option customizes the dependencies used by Runtime.
type Option func(*overrides)

type overrides struct {
	log       *slog.Logger
	cpuProbe  ports.Probe
	diskProbe ports.Probe
	store     ports.ReadingStore
	channel   ports.RequestChannel
	obs       ports.Observability
}

// WithLogger replaces the default JSON slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *overrides) { o.log = log }
}

// WithCPUProbe injects a custom processor probe (simulators, test doubles).
func WithCPUProbe(p ports.Probe) Option {
	return func(o *overrides) { o.cpuProbe = p }
}

// WithDiskProbe injects a custom filesystem probe.
func WithDiskProbe(p ports.Probe) Option {
	return func(o *overrides) { o.diskProbe = p }
}

// WithStore swaps the mutex-guarded slot for a caller-provided store.
func WithStore(s ports.ReadingStore) Option {
	return func(o *overrides) { o.store = s }
}

// WithChannel injects a custom request/reply channel to the processing peer.
func WithChannel(ch ports.RequestChannel) Option {
	return func(o *overrides) { o.channel = ch }
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs ports.Observability) Option {
	return func(o *overrides) { o.obs = obs }
}

// Runtime wires the probes, the shared slot, and the export channel together
// and owns the process lifecycle: peer gate at startup, loop supervision, and
// the producers-before-exporter shutdown ordering.
type Runtime struct {
	cfg     *config.Config
	log     *slog.Logger
	obs     ports.Observability
	store   ports.ReadingStore
	channel ports.RequestChannel
	cpu     ports.Probe
	disk    ports.Probe

	opsSrv      *http.Server
	gaugeStopCh chan struct{}
	stats       pipeline.ExportStats
}

// NewRuntime bootstraps the default adapters (gopsutil probes, slot store,
// HTTP channel, Prometheus observability). Options override any dependency.
func NewRuntime(cfg *config.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var o overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	log := o.log
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	obs := o.obs
	if obs == nil {
		obs = observability.NewPromObs(log)
	}

	st := o.store
	if st == nil {
		st = store.NewSlot()
	}

	ch := o.channel
	if ch == nil {
		var err error
		ch, err = channel.NewHTTP(channel.HTTPOptions{
			Endpoint: cfg.Peer.Endpoint,
			Timeout:  cfg.Peer.RequestTimeout,
		})
		if err != nil {
			return nil, err
		}
	}

	cpuProbe := o.cpuProbe
	if cpuProbe == nil {
		cpuProbe = probe.NewCPU()
	}
	diskProbe := o.diskProbe
	if diskProbe == nil {
		diskProbe = probe.NewDisk(cfg.Probes.DiskMount)
	}

	return &Runtime{
		cfg:     cfg,
		log:     log,
		obs:     obs,
		store:   st,
		channel: ch,
		cpu:     cpuProbe,
		disk:    diskProbe,
	}, nil
}

// Run blocks until the context is cancelled, then shuts down gracefully:
// producers first, a final exporter drain second. A peer that cannot be
// reached at startup is fatal; no loop is started in that case.
func (r *Runtime) Run(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.channel.Ping(pingCtx); err != nil {
		return fmt.Errorf("connect to processing peer: %w", err)
	}
	r.obs.LogInfo("peer_connected", ports.Field{Key: "endpoint", Value: r.cfg.Peer.Endpoint})

	r.startOps()

	exporter := &pipeline.Exporter{
		Store:          r.store,
		Channel:        r.channel,
		Interval:       r.cfg.Export.Interval,
		RequestTimeout: r.cfg.Peer.RequestTimeout,
		StatsEvery:     r.cfg.Export.StatsEvery,
		Obs:            r.obs,
	}

	// The exporter gets its own cancellation so it can drain after the
	// producers have already stopped.
	expCtx, expCancel := context.WithCancel(context.Background())
	defer expCancel()

	expDone := make(chan pipeline.ExportStats, 1)
	go func() {
		expDone <- exporter.Run(expCtx)
	}()

	producers := []*pipeline.Producer{
		{Probe: r.cpu, Store: r.store, Interval: r.cfg.Probes.CPUInterval, Warmup: r.cfg.Probes.WarmupDelay, Obs: r.obs},
		{Probe: r.disk, Store: r.store, Interval: r.cfg.Probes.DiskInterval, Obs: r.obs},
	}

	var wg sync.WaitGroup
	for _, p := range producers {
		wg.Add(1)
		go func(p *pipeline.Producer) {
			defer wg.Done()
			p.Run(ctx)
		}(p)
	}

	<-ctx.Done()
	r.obs.LogInfo("shutdown_started")

	wg.Wait()
	expCancel()
	r.stats = <-expDone

	shutdownCtx, sdCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer sdCancel()
	return r.Shutdown(shutdownCtx)
}

// Stats returns the exporter counters collected before shutdown.
func (r *Runtime) Stats() pipeline.ExportStats { return r.stats }

// Shutdown stops the ops server, the gauge recorder, and the peer channel.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.gaugeStopCh != nil {
		close(r.gaugeStopCh)
		r.gaugeStopCh = nil
	}

	if r.opsSrv != nil {
		if err := r.opsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *Runtime) startOps() {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(httplog.RequestLogger(r.log, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS.Concise(true),
	}))

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(r.store.Read())
	})

	r.opsSrv = &http.Server{
		Addr:    r.cfg.Ops.Addr,
		Handler: router,
	}

	go func() {
		if err := r.opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("ops_server_exited", err)
		}
	}()

	r.gaugeStopCh = make(chan struct{})
	go r.recordSlotGauges(r.gaugeStopCh, time.Second)
}

func (r *Runtime) recordSlotGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			reading := r.store.Read()
			if !reading.Valid {
				continue
			}
			r.obs.SetGauge("tlink_slot_age_seconds", time.Since(reading.Timestamp).Seconds())
		}
	}
}
