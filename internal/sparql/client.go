package sparql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/cta/internal/model"
)

// Endpoint defaults target the public DBpedia service.
const (
	// DefaultEndpoint is the public DBpedia SPARQL endpoint.
	DefaultEndpoint = "https://dbpedia.org/sparql"

	// DefaultResourceBase is prepended to a key to form the resource IRI.
	DefaultResourceBase = "http://dbpedia.org/resource/"

	// DefaultOntologyNamespace is the prefix a type URI must have to be kept.
	DefaultOntologyNamespace = "http://dbpedia.org/ontology/"

	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how much of a response is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultUserAgent identifies cta to the endpoint operator.
	DefaultUserAgent = "cta/1.0 (+https://github.com/nao1215/cta)"

	// resultsFormat is the media type requested from the endpoint.
	resultsFormat = "application/sparql-results+json"

	// typeVar is the query variable holding the type URI.
	typeVar = "type"
)

// queryTemplate asks for every rdf:type of one resource.
const queryTemplate = `PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
SELECT ?` + typeVar + ` WHERE { <%s> rdf:type ?` + typeVar + ` }`

// Client resolves keys against a SPARQL endpoint.
// It is safe for concurrent use; the underlying http.Client is shared.
type Client struct {
	httpClient   *http.Client
	endpoint     string
	resourceBase string
	namespace    string
	timeout      time.Duration
	userAgent    string
	maxBodySize  int64
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client, e.g. one built by NewHTTPClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithResourceBase sets the IRI prefix of looked-up resources.
func WithResourceBase(base string) Option {
	return func(c *Client) {
		c.resourceBase = base
	}
}

// WithOntologyNamespace sets the namespace that kept class URIs must start with.
func WithOntologyNamespace(ns string) Option {
	return func(c *Client) {
		c.namespace = ns
	}
}

// WithTimeout sets the per-lookup timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the response size limit. Non-positive values are ignored.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the given endpoint URL.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	c := &Client{
		endpoint:     endpoint,
		resourceBase: DefaultResourceBase,
		namespace:    DefaultOntologyNamespace,
		timeout:      DefaultTimeout,
		userAgent:    DefaultUserAgent,
		maxBodySize:  DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// Endpoint returns the endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ResourceIRI returns the IRI addressed by a key.
func (c *Client) ResourceIRI(key string) string {
	return c.resourceBase + escapeIRI(key)
}

// Query returns the SPARQL text sent for a key.
func (c *Client) Query(key string) string {
	return fmt.Sprintf(queryTemplate, c.ResourceIRI(key))
}

// Resolve returns the ontology classes of the resource named by key.
//
// A key with no matching class, an unparseable response, or a lookup that
// exceeds the per-call timeout yields a Resolution with no classes and a nil
// error. Transport failures and error statuses are returned wrapped in
// ErrTransport or ErrServiceStatus. Cancellation of ctx is returned as is.
func (c *Client) Resolve(ctx context.Context, key model.Key) (model.Resolution, error) {
	if key.IsAbsent() {
		return model.NewResolution(key, nil), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.Lookup(callCtx, key.String())
	if err != nil {
		if ctx.Err() != nil {
			return model.Resolution{}, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("lookup timed out",
				"key", key.String(),
				"timeout", c.timeout,
			)
			return model.Resolution{Key: key, Outcome: model.OutcomeTimeout}, nil
		}
		return model.Resolution{}, err
	}

	switch r := resp.(type) {
	case Parsed:
		classes := c.ontologyClasses(r)
		c.logger.Debug("lookup resolved",
			"key", key.String(),
			"bindings", len(r.Bindings),
			"classes", len(classes),
		)
		return model.NewResolution(key, classes), nil
	case Unparseable:
		c.logger.Debug("unparseable response treated as no classes",
			"key", key.String(),
			"reason", r.Reason,
		)
		return model.Resolution{Key: key, Outcome: model.OutcomeUnparseable}, nil
	default:
		return model.Resolution{}, fmt.Errorf("unexpected response type %T", resp)
	}
}

// Lookup sends the type query for key and decodes the response body.
func (c *Client) Lookup(ctx context.Context, key string) (Response, error) {
	params := url.Values{}
	params.Set("query", c.Query(key))
	params.Set("format", resultsFormat)

	target := c.endpoint
	if strings.Contains(target, "?") {
		target += "&" + params.Encode()
	} else {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", resultsFormat)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a little for diagnostics and so the connection can be reused.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		if detail := bodyDetail(snippet); detail != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrServiceStatus, resp.Status, detail)
		}
		return nil, fmt.Errorf("%w: %s", ErrServiceStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, wrapTransport(err)
	}

	return ParseResponse(body), nil
}

// ontologyClasses extracts de-duplicated type URIs under the namespace,
// in the order the endpoint returned them.
func (c *Client) ontologyClasses(p Parsed) []string {
	seen := make(map[string]struct{})
	classes := make([]string, 0)
	for _, b := range p.Bindings {
		term, ok := b[typeVar]
		if !ok || !strings.HasPrefix(term.Value, c.namespace) {
			continue
		}
		if _, dup := seen[term.Value]; dup {
			continue
		}
		seen[term.Value] = struct{}{}
		classes = append(classes, term.Value)
	}
	return classes
}

// wrapTransport tags err as a transport failure while keeping
// context.DeadlineExceeded detectable with errors.Is.
func wrapTransport(err error) error {
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// escapeIRI percent-encodes the characters SPARQL forbids inside an IRIREF.
// Normalized keys never contain them, but keys from other sources might.
func escapeIRI(s string) string {
	const forbidden = "<>\"{}|^`\\ "
	if !strings.ContainsAny(s, forbidden) && !strings.ContainsFunc(s, isControl) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(forbidden, r) || isControl(r) {
			fmt.Fprintf(&b, "%%%02X", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isControl(r rune) bool {
	return r <= 0x20
}
