package domain

import "time"

// Sensor identities produced by the built-in probes.
const (
	SensorCPU  = "cpu_usage_01"
	SensorDisk = "disk_usage_root"
)

// Reading is the canonical unit of telemetry in TelemetryLink: one measured
// value with its origin and the instant it was computed. Readings are value
// objects; they are published and read by copy and never mutated after
// construction.
type Reading struct {
	SensorID  string    `json:"sensor_id"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Valid     bool      `json:"is_valid"`
}

// NewReading stamps a measurement with the current UTC instant and marks it
// complete.
func NewReading(sensorID string, value float64) Reading {
	return Reading{
		SensorID:  sensorID,
		Value:     value,
		Timestamp: time.Now().UTC(),
		Valid:     true,
	}
}
