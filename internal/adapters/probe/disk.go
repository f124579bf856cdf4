package probe

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/rotmanben/TelemetryLink/internal/domain"
	"github.com/rotmanben/TelemetryLink/internal/ports"
)

// Disk measures the used fraction of the filesystem mounted at a fixed path.
// It is stateless; a failed query is an error, never a sentinel value.
type Disk struct {
	mount string
}

func NewDisk(mount string) *Disk {
	if mount == "" {
		mount = "/"
	}
	return &Disk{mount: mount}
}

func (d *Disk) SensorID() string { return domain.SensorDisk }

func (d *Disk) Sample() (float64, error) {
	usage, err := disk.Usage(d.mount)
	if err != nil {
		return 0, fmt.Errorf("disk usage for %q: %w", d.mount, err)
	}
	return usage.UsedPercent, nil
}

var _ ports.Probe = (*Disk)(nil)
