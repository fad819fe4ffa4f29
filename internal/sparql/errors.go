package sparql

import "errors"

// Resolver errors.
// Callers use errors.Is to tell a broken service from a broken configuration.
var (
	// ErrTransport wraps failures to reach the endpoint or read its response.
	ErrTransport = errors.New("knowledge base transport failure")

	// ErrServiceStatus is returned when the endpoint answers with a non-2xx status.
	ErrServiceStatus = errors.New("knowledge base returned an error status")

	// ErrInvalidEndpoint is returned when the endpoint is not an absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint: expected an absolute http or https URL")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)
