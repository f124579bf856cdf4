package probe

import (
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/rotmanben/TelemetryLink/internal/domain"
	"github.com/rotmanben/TelemetryLink/internal/ports"
)

// CPU measures aggregate processor utilization as the busy fraction of the
// cumulative CPU time counters between two consecutive samples. The first
// sample only primes the retained counters and returns ports.ErrWarmingUp.
type CPU struct {
	mu   sync.Mutex
	prev *cpu.TimesStat
}

func NewCPU() *CPU {
	return &CPU{}
}

func (c *CPU) SensorID() string { return domain.SensorCPU }

func (c *CPU) Sample() (float64, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return 0, fmt.Errorf("read cpu times: %w", err)
	}
	if len(times) == 0 {
		return 0, fmt.Errorf("read cpu times: empty result")
	}
	cur := times[0]

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prev == nil {
		c.prev = &cur
		return 0, ports.ErrWarmingUp
	}

	usage := busyPercent(*c.prev, cur)
	c.prev = &cur
	return usage, nil
}

// busyPercent computes the non-idle share of CPU time elapsed between two
// cumulative counter snapshots. Iowait counts as idle; guest time is already
// folded into user/nice by the kernel.
func busyPercent(prev, cur cpu.TimesStat) float64 {
	prevIdle := prev.Idle + prev.Iowait
	curIdle := cur.Idle + cur.Iowait

	prevBusy := prev.User + prev.Nice + prev.System + prev.Irq + prev.Softirq + prev.Steal
	curBusy := cur.User + cur.Nice + cur.System + cur.Irq + cur.Softirq + cur.Steal

	total := (curIdle + curBusy) - (prevIdle + prevBusy)
	if total <= 0 {
		return 0
	}
	return (curBusy - prevBusy) / total * 100.0
}

var _ ports.Probe = (*CPU)(nil)
