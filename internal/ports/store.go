package ports

import "github.com/rotmanben/TelemetryLink/internal/domain"

// ReadingStore is the single-slot latest-value register shared between the
// producer loops and the export loop. Publish replaces the slot as a whole;
// Read returns a full copy. A Read must never observe fields from two
// different Publish calls. Before the first publish, Read returns the zero
// Reading (Valid == false).
type ReadingStore interface {
	Publish(r domain.Reading)
	Read() domain.Reading
}
