package regtap

import "errors"

// Sentinel errors for common registry failures.
var (
	// ErrNotFound indicates no registry record matched the identifier.
	ErrNotFound = errors.New("resource not found")

	// ErrNoEndpoints indicates no usable registry endpoint is configured.
	ErrNoEndpoints = errors.New("no registry endpoints configured")

	// ErrEmptyConstraints indicates a search with nothing to match on.
	ErrEmptyConstraints = errors.New("empty search constraints")

	// ErrNoStdInterface indicates the resource publishes the requested
	// capability but no standard way to invoke it.
	ErrNoStdInterface = errors.New("no standard interface")
)
