package domain

import "time"

// Peer reply statuses.
const (
	StatusOK    = "OK"
	StatusAlert = "ALERT"
)

// ExportMessage is the wire record sent to the processing peer. Exactly one
// of CPUUsage/DiskUsage is set, keyed by the reading's sensor identity.
type ExportMessage struct {
	SensorID       string   `json:"sensor_id"`
	Timestamp      string   `json:"timestamp"`
	CPUUsage       *float64 `json:"cpu_usage_percent,omitempty"`
	DiskUsage      *float64 `json:"disk_usage_percent,omitempty"`
	DataConsistent bool     `json:"data_consistent"`
}

// NewExportMessage builds the export record for a reading. Readings from
// unknown sensors fall back to the disk-style value key so the peer still
// receives the measurement.
func NewExportMessage(r Reading, consistent bool) ExportMessage {
	msg := ExportMessage{
		SensorID:       r.SensorID,
		Timestamp:      r.Timestamp.UTC().Format(time.RFC3339),
		DataConsistent: consistent,
	}
	v := r.Value
	if r.SensorID == SensorCPU {
		msg.CPUUsage = &v
	} else {
		msg.DiskUsage = &v
	}
	return msg
}

// ExportReply is the peer's synchronous acknowledgement.
type ExportReply struct {
	SensorID  string `json:"sensor_id"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}
