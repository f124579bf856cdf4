package store

import (
	"sync"
	"testing"
	"time"

	"github.com/rotmanben/TelemetryLink/internal/domain"
)

func TestSlotEmptyUntilFirstPublish(t *testing.T) {
	s := NewSlot()

	r := s.Read()
	if r.Valid {
		t.Fatalf("expected invalid sentinel before first publish, got %+v", r)
	}
	if r.SensorID != "" || r.Value != 0 {
		t.Fatalf("expected zero reading before first publish, got %+v", r)
	}
}

func TestSlotLatestPublishWins(t *testing.T) {
	s := NewSlot()

	s.Publish(domain.NewReading(domain.SensorCPU, 10))
	s.Publish(domain.NewReading(domain.SensorDisk, 60))

	r := s.Read()
	if r.SensorID != domain.SensorDisk || r.Value != 60 {
		t.Fatalf("expected latest publish to win, got %+v", r)
	}
	if !r.Valid {
		t.Fatalf("published reading should be valid")
	}
}

func TestSlotPublishIsAtomicUnderConcurrency(t *testing.T) {
	s := NewSlot()

	cpuTS := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	diskTS := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	cpu := domain.Reading{SensorID: domain.SensorCPU, Value: 42.5, Timestamp: cpuTS, Valid: true}
	disk := domain.Reading{SensorID: domain.SensorDisk, Value: 87.5, Timestamp: diskTS, Valid: true}

	const iterations = 20000
	var wg sync.WaitGroup
	for _, r := range []domain.Reading{cpu, disk} {
		wg.Add(1)
		go func(r domain.Reading) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				s.Publish(r)
			}
		}(r)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	// Every read must be exactly one of the two published readings, never a
	// mix of fields from both.
	for {
		select {
		case <-done:
			return
		default:
		}

		got := s.Read()
		if !got.Valid {
			continue
		}
		switch got.SensorID {
		case domain.SensorCPU:
			if got.Value != cpu.Value || !got.Timestamp.Equal(cpuTS) {
				t.Fatalf("torn read: cpu sensor with foreign fields: %+v", got)
			}
		case domain.SensorDisk:
			if got.Value != disk.Value || !got.Timestamp.Equal(diskTS) {
				t.Fatalf("torn read: disk sensor with foreign fields: %+v", got)
			}
		default:
			t.Fatalf("torn read: unknown sensor id %q", got.SensorID)
		}
	}
}
