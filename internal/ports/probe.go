package ports

import "errors"

// ErrWarmingUp is returned by probes whose first sample only primes internal
// counters and carries no usable value.
var ErrWarmingUp = errors.New("probe warming up")

type Probe interface {
	SensorID() string
	Sample() (float64, error)
}
