package ports

import "context"

// RequestChannel is the synchronous request/reply link to the processing
// peer. Request sends one payload and blocks for the reply; timeouts,
// unreachable peers and malformed replies surface as errors, never as silent
// loss. Ping verifies peer reachability before any loop starts.
type RequestChannel interface {
	Request(ctx context.Context, payload []byte) ([]byte, error)
	Ping(ctx context.Context) error
	Close() error
}
