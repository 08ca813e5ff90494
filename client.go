package regtap

import (
	"context"
	"log/slog"

	"github.com/openvo/go-regtap/tap"
	"github.com/openvo/go-regtap/votable"
)

// DefaultMaxRec is the row limit sent with queries unless the client
// or the individual query overrides it.
const DefaultMaxRec = 10000

// DefaultEndpoints lists the public relational registry mirrors, tried
// in order. They replicate the same records, so any one of them can
// answer.
var DefaultEndpoints = []string{
	"https://reg.g-vo.org/tap",
	"https://registry.euro-vo.org/regtap/tap",
	"https://vao.stsci.edu/RegTAP/TapService.aspx",
}

// Client searches the relational registry through a chain of mirror
// endpoints, with in-process caching of query results.
//
// A Client is safe for concurrent use.
type Client struct {
	chain  *endpointChain
	cache  QueryCache
	logger *slog.Logger
}

// New creates a registry client. With no options it queries the public
// mirrors in DefaultEndpoints, keeps results in memory for the life of
// the client, and sends a row limit of DefaultMaxRec.
func New(opts ...Option) (*Client, error) {
	cfg, err := newClientConfig(opts...)
	if err != nil {
		return nil, err
	}
	if len(cfg.endpoints) == 0 {
		cfg.endpoints = append(cfg.endpoints, DefaultEndpoints...)
	}
	if cfg.maxRec < 0 {
		cfg.maxRec = DefaultMaxRec
	}
	if cfg.cache == nil {
		cfg.cache = NewMemoryCache()
	}

	chain, err := newEndpointChain(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		chain:  chain,
		cache:  cfg.cache,
		logger: cfg.log(),
	}, nil
}

// Endpoints returns the configured endpoint URLs in chain order.
func (c *Client) Endpoints() []string {
	return c.chain.endpointURLs()
}

// PreferredEndpoint returns the mirror that served the last successful
// query. Empty before any query succeeded.
func (c *Client) PreferredEndpoint() string {
	return c.chain.preferredURL()
}

// Query runs raw registry ADQL and returns the decoded table. It is
// the escape hatch for needs the typed operations don't cover.
func (c *Client) Query(ctx context.Context, query string, opts ...tap.QueryOption) (*votable.Table, error) {
	table, _, err := c.runQuery(ctx, query, opts...)
	return table, err
}

// runQuery answers from the cache when possible, otherwise through the
// endpoint chain. Only unmodified queries are cached: per-query options
// change the answer the service gives.
func (c *Client) runQuery(ctx context.Context, query string, opts ...tap.QueryOption) (*votable.Table, string, error) {
	cacheable := len(opts) == 0

	if cacheable {
		table, ok, err := c.cache.Get(ctx, query)
		switch {
		case err != nil:
			c.logger.Debug("query cache get failed", slog.String("error", err.Error()))
		case ok:
			c.logger.Debug("query served from cache", slog.Int("rows", table.Len()))
			return table, c.chain.preferredURL(), nil
		}
	}

	table, endpoint, err := c.chain.query(ctx, query, opts...)
	if err != nil {
		return nil, "", err
	}
	c.logger.Debug("query answered",
		slog.String("endpoint", endpoint),
		slog.Int("rows", table.Len()))

	if cacheable {
		if err := c.cache.Put(ctx, query, table); err != nil {
			c.logger.Debug("query cache put failed", slog.String("error", err.Error()))
		}
	}
	return table, endpoint, nil
}
