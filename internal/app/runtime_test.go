package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rotmanben/TelemetryLink/internal/adapters/channel"
	"github.com/rotmanben/TelemetryLink/internal/app/config"
	"github.com/rotmanben/TelemetryLink/internal/domain"
	"github.com/rotmanben/TelemetryLink/internal/ports"
)

type staticProbe struct {
	id    string
	value float64
}

func (p *staticProbe) SensorID() string { return p.id }

func (p *staticProbe) Sample() (float64, error) { return p.value, nil }

type quietObs struct{}

func (quietObs) LogInfo(msg string, fields ...ports.Field)             {}
func (quietObs) LogWarn(msg string, fields ...ports.Field)             {}
func (quietObs) LogError(msg string, err error, fields ...ports.Field) {}
func (quietObs) IncCounter(name string, v float64)                     {}
func (quietObs) SetGauge(name string, v float64)                       {}
func (quietObs) ObserveLatency(name string, seconds float64)           {}

type failingChannel struct{}

func (failingChannel) Request(ctx context.Context, payload []byte) ([]byte, error) {
	return nil, errors.New("not connected")
}
func (failingChannel) Ping(ctx context.Context) error { return errors.New("connection refused") }
func (failingChannel) Close() error                   { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Peer: config.PeerConfig{
			Endpoint:       "http://peer:5555",
			RequestTimeout: time.Second,
		},
		Probes: config.ProbesConfig{
			CPUInterval:  2 * time.Millisecond,
			DiskInterval: 3 * time.Millisecond,
			DiskMount:    "/",
			WarmupDelay:  5 * time.Millisecond,
		},
		Export: config.ExportConfig{
			Interval:   4 * time.Millisecond,
			StatsEvery: 50,
		},
		Ops: config.OpsConfig{Addr: "127.0.0.1:0"},
	}
}

func TestNewRuntimeRequiresConfig(t *testing.T) {
	if _, err := NewRuntime(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestRuntimeRunLifecycle(t *testing.T) {
	var (
		mu       sync.Mutex
		requests int
	)
	peer := channel.NewCallback(func(ctx context.Context, payload []byte) ([]byte, error) {
		var msg domain.ExportMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Errorf("peer received malformed payload: %v", err)
		}
		mu.Lock()
		requests++
		mu.Unlock()
		reply := domain.ExportReply{SensorID: msg.SensorID, Timestamp: msg.Timestamp, Status: domain.StatusOK}
		return json.Marshal(reply)
	})

	rt, err := NewRuntime(testConfig(),
		WithCPUProbe(&staticProbe{id: domain.SensorCPU, value: 35}),
		WithDiskProbe(&staticProbe{id: domain.SensorDisk, value: 70}),
		WithChannel(peer),
		WithObservability(quietObs{}),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- rt.Run(ctx)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runtime did not shut down")
	}

	stats := rt.Stats()
	if stats.TotalReads == 0 {
		t.Fatalf("expected exports before shutdown")
	}
	if stats.CorruptionCount > stats.TotalReads {
		t.Fatalf("corruption count %d exceeds total reads %d", stats.CorruptionCount, stats.TotalReads)
	}

	mu.Lock()
	defer mu.Unlock()
	if requests != stats.TotalReads+stats.DroppedTicks {
		t.Fatalf("peer saw %d requests, stats account for %d", requests, stats.TotalReads+stats.DroppedTicks)
	}
}

func TestRuntimeFatalWhenPeerUnreachable(t *testing.T) {
	rt, err := NewRuntime(testConfig(),
		WithCPUProbe(&staticProbe{id: domain.SensorCPU, value: 35}),
		WithDiskProbe(&staticProbe{id: domain.SensorDisk, value: 70}),
		WithChannel(failingChannel{}),
		WithObservability(quietObs{}),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := rt.Run(ctx); err == nil {
		t.Fatalf("expected startup failure when peer is unreachable")
	}
}
