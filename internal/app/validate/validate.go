// Package validate decides whether a reading is semantically plausible before
// export. A failed check is a data-quality observation, not an error: the
// reading is still exported, flagged as inconsistent.
package validate

import (
	"fmt"

	"github.com/rotmanben/TelemetryLink/internal/domain"
)

// Check evaluates a reading against the per-sensor plausibility rules.
// It returns false with the failed rules for inconsistent readings.
//
// Known quirk: the disk rule only rejects values above 100 while the CPU rule
// rejects both out-of-range directions. The upstream processing contract was
// written this way and peers tally corruption against it, so the asymmetry is
// kept rather than fixed.
func Check(r domain.Reading) (bool, []string) {
	var reasons []string

	if r.SensorID == "" {
		reasons = append(reasons, "sensor_id is empty")
	}
	if r.Timestamp.IsZero() {
		reasons = append(reasons, "timestamp is empty")
	}

	switch r.SensorID {
	case domain.SensorCPU:
		if r.Value < 0 || r.Value > 100 {
			reasons = append(reasons, fmt.Sprintf("cpu value %g outside [0,100]", r.Value))
		}
	case domain.SensorDisk:
		if r.Value > 100 {
			reasons = append(reasons, fmt.Sprintf("disk value %g above 100", r.Value))
		}
	}

	return len(reasons) == 0, reasons
}
