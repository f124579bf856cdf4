package store

import (
	"sync"

	"github.com/rotmanben/TelemetryLink/internal/domain"
	"github.com/rotmanben/TelemetryLink/internal/ports"
)

// Slot is the mutex-guarded latest-value register. There is no queue and no
// history: each Publish overwrites the previous reading as a whole, and Read
// hands out a copy taken under the same lock, so a reader can never observe
// fields from two different publishes.
type Slot struct {
	mu      sync.Mutex
	current domain.Reading
}

func NewSlot() *Slot {
	return &Slot{}
}

func (s *Slot) Publish(r domain.Reading) {
	s.mu.Lock()
	s.current = r
	s.mu.Unlock()
}

// Read returns the current reading, or the zero Reading (Valid == false)
// before the first publish.
func (s *Slot) Read() domain.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

var _ ports.ReadingStore = (*Slot)(nil)
