package regtap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/openvo/go-regtap/tap"
	"github.com/openvo/go-regtap/votable"
)

// endpointChain implements multi-endpoint lookup with fallback
// behavior. It tries endpoints in order and remembers which one
// answered, so related queries land on the same mirror.
//
// The public relational registries are full replicas of each other, so
// the chain moves on to the next endpoint on ANY error: outages, TLS
// failures, and per-mirror ADQL quirks all look the same from here.
// A query fails only when every mirror failed.
type endpointChain struct {
	clients []*tap.Client

	// preferred is the index of the endpoint that answered the last
	// successful query. -1 before the first success.
	preferred   int
	preferredMu sync.RWMutex
}

// newEndpointChain creates a chain from the configured endpoint URLs.
//
// Returns an error if no URLs are configured or none of them can be
// turned into a client. Invalid URLs among valid ones are skipped with
// a warning.
func newEndpointChain(cfg *clientConfig) (*endpointChain, error) {
	if len(cfg.endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	clients := make([]*tap.Client, 0, len(cfg.endpoints))
	for _, url := range cfg.endpoints {
		client, err := newTAPClient(url, cfg)
		if err != nil {
			cfg.log().Warn("skipping invalid registry endpoint",
				slog.String("endpoint", url),
				slog.String("error", err.Error()))
			continue
		}
		clients = append(clients, client)
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("none of the %d configured endpoints are usable: %w",
			len(cfg.endpoints), ErrNoEndpoints)
	}

	return &endpointChain{clients: clients, preferred: -1}, nil
}

// newTAPClient builds one protocol client from the shared configuration.
func newTAPClient(url string, cfg *clientConfig) (*tap.Client, error) {
	opts := []tap.Option{
		tap.WithLogger(cfg.log()),
	}
	if cfg.httpClient != nil {
		opts = append(opts, tap.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		opts = append(opts, tap.WithTimeout(cfg.timeout))
	}
	if cfg.maxRec > 0 {
		opts = append(opts, tap.WithMaxRec(cfg.maxRec))
	}
	if cfg.userAgent != "" {
		opts = append(opts, tap.WithUserAgent(cfg.userAgent))
	}
	return tap.New(url, opts...)
}

// query runs the query text against the chain and returns the decoded
// table together with the endpoint that served it.
func (ec *endpointChain) query(ctx context.Context, query string, opts ...tap.QueryOption) (*votable.Table, string, error) {
	var attempts []string
	for _, idx := range ec.tryOrder() {
		client := ec.clients[idx]
		table, err := client.Sync(ctx, query, opts...)
		if err == nil {
			ec.remember(idx)
			return table, client.BaseURL(), nil
		}

		// Bad parameters fail the same way everywhere; don't burn
		// through the chain for them.
		var verrs *tap.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, "", err
		}

		attempts = append(attempts, fmt.Sprintf("%s: %v", client.BaseURL(), err))

		// Once the context is done the remaining endpoints would
		// fail identically.
		if ctx.Err() != nil {
			break
		}
	}

	return nil, "", &QueryError{Attempts: attempts}
}

// tryOrder returns endpoint indices with the preferred one first.
func (ec *endpointChain) tryOrder() []int {
	ec.preferredMu.RLock()
	pref := ec.preferred
	ec.preferredMu.RUnlock()

	order := make([]int, 0, len(ec.clients))
	if pref >= 0 && pref < len(ec.clients) {
		order = append(order, pref)
	}
	for i := range ec.clients {
		if i != pref {
			order = append(order, i)
		}
	}
	return order
}

// remember marks the endpoint that answered for subsequent queries.
func (ec *endpointChain) remember(idx int) {
	ec.preferredMu.Lock()
	ec.preferred = idx
	ec.preferredMu.Unlock()
}

// preferredURL returns the endpoint that served the last successful
// query. Empty before any query succeeded.
func (ec *endpointChain) preferredURL() string {
	ec.preferredMu.RLock()
	defer ec.preferredMu.RUnlock()
	if ec.preferred < 0 {
		return ""
	}
	return ec.clients[ec.preferred].BaseURL()
}

// endpointURLs returns the URLs of all endpoints, in chain order.
func (ec *endpointChain) endpointURLs() []string {
	urls := make([]string, len(ec.clients))
	for i, c := range ec.clients {
		urls[i] = c.BaseURL()
	}
	return urls
}
