package sparql

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// NewHTTPClient creates the HTTP client used for endpoint queries.
// When proxyAddress is non-empty, connections go through a SOCKS5 proxy at
// that "host:port". The client carries no overall timeout; every lookup is
// bounded by its own context deadline instead.
func NewHTTPClient(proxyAddress string, headers map[string]string) (*http.Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if proxyAddress != "" {
		if !isValidProxyAddress(proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.DialContext = contextDialer(dialer)
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	var rt http.RoundTripper = transport
	if len(headers) > 0 {
		rt = &headerInjectingTransport{base: transport, headers: headers}
	}

	return &http.Client{Transport: rt}, nil
}

// contextDialer adapts a proxy dialer to http.Transport.DialContext.
// The SOCKS5 dialer from x/net implements proxy.ContextDialer; other dialers
// are wrapped so cancellation at least unblocks the caller.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		ch := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, address)
			ch <- dialResult{conn, err}
		}()
		select {
		case r := <-ch:
			return r.conn, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// isValidProxyAddress checks for "host:port" with a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// headerInjectingTransport adds configured headers (API keys, auth) to
// every request sent to the endpoint.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
