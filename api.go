// Package regtap discovers astronomical data services through the
// Virtual Observatory's relational registry.
//
// The registry is itself a TAP service exposing the rr.* tables, so
// discovery means sending ADQL and decoding VOTable answers. This
// package hides that plumbing behind typed searches and lookups.
//
// # Overview
//
// The package provides three layers:
//
//   - regtap (this package): typed registry operations (Search,
//     Describe, ResolveService) over a chain of mirror endpoints
//   - tap: the wire protocol, synchronous and asynchronous queries,
//     capabilities, availability
//   - votable: the data format, parsing and decoding tabular answers
//
// # Quick Start
//
// The simplest way to find services:
//
//	// Zero-config: uses the public registry mirrors
//	result, err := regtap.Search(ctx, regtap.Constraints{
//	    Keywords: []string{"rosat"},
//	    Type:     regtap.ServiceConeSearch,
//	})
//
//	// Full record for one identifier
//	res, err := regtap.Describe(ctx, "ivo://nasa.heasarc/rosmaster")
//
//	// From discovery to an invokable endpoint
//	svc, err := regtap.ResolveService(ctx, "ivo://nasa.heasarc/rosmaster", regtap.ServiceConeSearch)
//
// # Endpoint Configuration
//
// By default the public mirrors in DefaultEndpoints are tried in
// order, and the first one that answers is preferred afterwards. For
// a private or local registry:
//
//	client, err := regtap.New(
//	    regtap.WithEndpoints("https://registry.example.org/tap"),
//	)
//
// # Thread Safety
//
// All public types in this package are safe for concurrent use.
package regtap

import (
	"context"
	"sync"

	"github.com/openvo/go-regtap/votable"
)

// defaultClient builds the zero-config client once, on first use.
var defaultClient = sync.OnceValues(func() (*Client, error) {
	return New()
})

// Search finds registry resources matching the constraints, using the
// default client.
//
// This is the recommended entry point for service discovery.
func Search(ctx context.Context, cons Constraints) (*SearchResult, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}
	return c.Search(ctx, cons)
}

// Describe fetches the full registry record for one identifier, using
// the default client.
func Describe(ctx context.Context, id string) (*Resource, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}
	return c.Describe(ctx, id)
}

// Query runs raw registry ADQL using the default client.
func Query(ctx context.Context, query string) (*votable.Table, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, query)
}

// ResolveService narrows a resource down to an invokable endpoint,
// using the default client.
func ResolveService(ctx context.Context, id string, st ServiceType) (*Service, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}
	return c.ResolveService(ctx, id, st)
}
