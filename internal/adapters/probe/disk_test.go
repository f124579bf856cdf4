package probe

import (
	"testing"

	"github.com/rotmanben/TelemetryLink/internal/domain"
)

func TestDiskSample(t *testing.T) {
	p := NewDisk("/")

	if p.SensorID() != domain.SensorDisk {
		t.Fatalf("unexpected sensor id %q", p.SensorID())
	}

	value, err := p.Sample()
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if value < 0 || value > 100 {
		t.Fatalf("disk usage %g outside [0,100]", value)
	}
}

func TestDiskDefaultsToRoot(t *testing.T) {
	p := NewDisk("")
	if p.mount != "/" {
		t.Fatalf("expected default mount /, got %q", p.mount)
	}
}

func TestDiskSampleErrorForMissingMount(t *testing.T) {
	p := NewDisk("/definitely/not/a/mountpoint")
	if _, err := p.Sample(); err == nil {
		t.Fatalf("expected error for missing mount point")
	}
}
