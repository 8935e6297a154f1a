// Package transport builds the HTTP client used to reach the registry.
package transport

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// DefaultTimeout bounds a whole registry round trip.
const DefaultTimeout = 10 * time.Second

// NewClient returns an HTTP/2-capable client with the given overall timeout.
// A non-positive timeout selects DefaultTimeout.
func NewClient(timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	t1 := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}
	t2, err := http2.ConfigureTransports(t1)
	if err != nil {
		return nil, fmt.Errorf("configure http2: %w", err)
	}
	t2.ReadIdleTimeout = timeout
	t2.PingTimeout = timeout / 2

	return &http.Client{
		Transport: t1,
		Timeout:   timeout,
	}, nil
}
