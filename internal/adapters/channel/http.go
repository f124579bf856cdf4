package channel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotmanben/TelemetryLink/internal/ports"
)

// HTTPChannel exchanges one JSON payload for one JSON reply with the
// processing peer over HTTP POST. The exchange is strictly synchronous: one
// outstanding request per call, bounded by the caller's context and the
// configured timeout.
type HTTPChannel struct {
	endpoint *url.URL
	hc       *http.Client
}

type HTTPOptions struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
}

func NewHTTP(opts HTTPOptions) (*HTTPChannel, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, fmt.Errorf("peer endpoint is required")
	}
	u, err := url.Parse(normalizeEndpoint(opts.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("parse peer endpoint: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	hc := opts.Client
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPChannel{endpoint: u, hc: hc}, nil
}

func normalizeEndpoint(s string) string {
	s = strings.TrimRight(s, "/")
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	return "http://" + s
}

func (c *HTTPChannel) Request(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("peer replied with status %d", resp.StatusCode)
	}

	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}

// Ping verifies the peer is reachable by dialing its address. It is used as
// the startup gate: without a peer there is no purpose in running.
func (c *HTTPChannel) Ping(ctx context.Context) error {
	host := c.endpoint.Hostname()
	port := c.endpoint.Port()
	if port == "" {
		if c.endpoint.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return fmt.Errorf("peer %s unreachable: %w", c.endpoint.Host, err)
	}
	return conn.Close()
}

func (c *HTTPChannel) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

var _ ports.RequestChannel = (*HTTPChannel)(nil)
