package tap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openvo/go-regtap/votable"
)

// Client configuration defaults.
const (
	DefaultMaxIdleConns        = 50
	DefaultMaxIdleConnsPerHost = 20
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultRequestTimeout      = 15 * time.Second
	DefaultPollInterval        = 1 * time.Second
)

// Client issues queries against one TAP service.
type Client struct {
	baseURL   string
	client    *http.Client
	logger    *slog.Logger
	userAgent string

	// maxRec is the default row limit sent with every query.
	// Zero means the service default applies.
	maxRec int

	// pollInterval is the starting delay between job phase checks.
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets a custom HTTP request timeout.
// Zero or negative values fall back to the default timeout (15 seconds).
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		} else {
			c.client.Timeout = DefaultRequestTimeout
		}
	}
}

// WithLogger sets a structured logger for request diagnostics.
// If not set, logging is disabled (silent mode).
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxRec sets the default MAXREC row limit for queries from this
// client. Individual queries can override it.
func WithMaxRec(n int) Option {
	return func(c *Client) {
		c.maxRec = n
	}
}

// WithPollInterval sets the starting delay between phase checks while
// waiting on an asynchronous job.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// New creates a client for the TAP service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("tap: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("tap: invalid base URL %q: scheme must be http or https", baseURL)
	}

	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		DisableCompression:  false,
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout:   DefaultRequestTimeout,
			Transport: transport,
		},
		logger:       slog.New(discardHandler{}),
		userAgent:    "go-regtap",
		pollInterval: DefaultPollInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Sync executes an ADQL query on the synchronous endpoint and decodes
// the VOTable response into a table.
func (c *Client) Sync(ctx context.Context, query string, opts ...QueryOption) (*votable.Table, error) {
	params, err := c.queryParams(query, opts)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/sync"
	c.logger.Debug("tap sync query",
		slog.String("endpoint", endpoint),
		slog.String("runid", params.Get("RUNID")),
		slog.Int("query_bytes", len(query)))

	status, body, err := c.postForm(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return ParseResponse(endpoint, status, body)
}

// queryParams assembles the protocol form fields for one query.
func (c *Client) queryParams(query string, opts []QueryOption) (url.Values, error) {
	q := queryConfig{maxRec: -1}
	for _, opt := range opts {
		opt(&q)
	}
	if err := validateQuery(query, &q); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("REQUEST", "doQuery")
	params.Set("LANG", "ADQL")
	params.Set("QUERY", query)
	params.Set("FORMAT", "votable")

	maxRec := c.maxRec
	if q.maxRec >= 0 {
		maxRec = q.maxRec
	}
	if maxRec > 0 || q.maxRec == 0 {
		params.Set("MAXREC", strconv.Itoa(maxRec))
	}

	runID := q.runID
	if runID == "" {
		runID = newRunID()
	}
	params.Set("RUNID", runID)

	return params, nil
}

// newRunID labels a request for service-side log correlation.
func newRunID() string {
	return "go-regtap-" + uuid.NewString()
}

// postForm sends a form-encoded POST and returns status and body.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// get performs an HTTP GET and returns status and body.
func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// ParseResponse converts a TAP response into a table.
//
// Services deliver failures two ways: an HTTP error status, or a 200
// whose body is a VOTable error document. Either way the body is tried
// as a VOTable first, so the service's own message wins over a bare
// status code.
func ParseResponse(endpoint string, status int, body []byte) (*votable.Table, error) {
	doc, parseErr := votable.ParseBytes(body)
	if parseErr == nil {
		table, err := doc.FirstTable()
		if err == nil {
			if status < 200 || status >= 300 {
				return nil, fmt.Errorf("HTTP %d: %s", status, endpoint)
			}
			return table, nil
		}
		var statusErr *votable.StatusError
		if errors.As(err, &statusErr) {
			return nil, fmt.Errorf("%s: %w", endpoint, statusErr)
		}
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("HTTP %d: %s", status, endpoint)
		}
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", status, endpoint)
	}
	return nil, parseErr
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
