package regtap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Option configures a registry client.
type Option func(*clientConfig) error

// clientConfig holds all client configuration.
type clientConfig struct {
	endpoints  []string
	timeout    time.Duration
	maxRec     int
	userAgent  string
	httpClient *http.Client
	cache      QueryCache

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// WithEndpoints adds registry endpoints to query, in priority order.
// The first endpoint that answers is preferred for later queries.
func WithEndpoints(urls ...string) Option {
	return func(c *clientConfig) error {
		c.endpoints = append(c.endpoints, urls...)
		return nil
	}
}

// WithTimeout sets the HTTP request timeout for registry queries.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) error {
		c.timeout = d
		return nil
	}
}

// WithMaxRec sets the default row limit sent with every query.
// Zero disables the limit and leaves truncation to the service.
func WithMaxRec(n int) Option {
	return func(c *clientConfig) error {
		c.maxRec = n
		return nil
	}
}

// WithUserAgent sets the User-Agent header for registry requests.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) error {
		c.userAgent = ua
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for registry requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) error {
		c.httpClient = client
		return nil
	}
}

// WithCache sets the query result cache. By default results are kept
// in memory for the life of the client; use NoopCache to disable
// caching entirely.
func WithCache(cache QueryCache) Option {
	return func(c *clientConfig) error {
		c.cache = cache
		return nil
	}
}

// WithLogger sets a structured logger for query diagnostics.
// If not set, logging is disabled (silent mode).
//
// The library uses log/slog (Go 1.21+) which supports any backend via
// handlers. For example, zap users can use:
// slog.New(zapslog.NewHandler(zapCore)).
//
// Example:
//
//	// Use default logger
//	regtap.New(regtap.WithLogger(slog.Default()))
//
//	// Use custom logger with attributes
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("component", "regtap")
//	regtap.New(regtap.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *clientConfig) validate() error {
	if c.timeout < 0 {
		return errors.New("timeout must be positive")
	}
	if c.maxRec < -1 {
		return errors.New("row limit must not be negative")
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
// This allows internal code to call logging methods without nil checks.
func (c *clientConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newClientConfig creates a client configuration by applying the given
// options and validating the result.
func newClientConfig(opts ...Option) (*clientConfig, error) {
	// maxRec -1 means "not set"; an explicit zero disables the limit.
	c := &clientConfig{maxRec: -1}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}
