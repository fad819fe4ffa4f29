// Package log provides the slog logger used by cta, with automatic
// redaction of credentials.
//
// Knowledge-base endpoints are often reached with an API key in a header,
// a token in the query string or a user and password in the URL. The
// SecureHandler masks all of these before a record reaches the output:
//   - attributes whose key names a credential (authorization, api key,
//     token, password, ...)
//   - values that look like bearer, basic or JWT tokens
//   - the userinfo part and credential query parameters of URLs
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("lookup failed", "endpoint", "https://user:pw@example.org/sparql")
//	// endpoint=https://***REDACTED***@example.org/sparql
package log
