package channel

import (
	"context"
	"fmt"

	"github.com/rotmanben/TelemetryLink/internal/ports"
)

// RequestFunc handles one request/reply exchange.
type RequestFunc func(ctx context.Context, payload []byte) ([]byte, error)

// NewCallback adapts a RequestFunc into a full ports.RequestChannel so
// callers can plug arbitrary peers (in-process processors, test doubles)
// without defining structs.
func NewCallback(fn RequestFunc) ports.RequestChannel {
	return &callbackChannel{fn: fn}
}

type callbackChannel struct {
	fn RequestFunc
}

func (c *callbackChannel) Request(ctx context.Context, payload []byte) ([]byte, error) {
	if c.fn == nil {
		return nil, fmt.Errorf("callback channel: nil handler")
	}
	return c.fn(ctx, payload)
}

func (c *callbackChannel) Ping(ctx context.Context) error {
	if c.fn == nil {
		return fmt.Errorf("callback channel: nil handler")
	}
	return nil
}

func (c *callbackChannel) Close() error { return nil }
