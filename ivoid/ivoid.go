// Package ivoid provides strongly-typed, validated IVOA identifiers.
//
// All types in this package are immutable and validate their values at construction time.
// Zero values are generally invalid - use the constructor functions (Parse, MustParse)
// to create valid instances.
//
// # Format
//
// An IVOID is a URI of the form:
//
//	ivo://authority/path#fragment
//
// where the authority and path identify a registered resource and the optional
// fragment addresses a standard key within it (e.g. the sync endpoint of the
// TAP standard is "ivo://ivoa.net/std/tap#sync-1.1").
//
// # Normalization
//
// The relational registry stores identifiers lowercased, and all comparisons
// in this package happen on the lowercased form. Parse normalizes its input,
// so two IVOIDs that differ only in case compare equal.
package ivoid

import (
	"fmt"
	"regexp"
	"strings"
)

// IVOID represents a validated, normalized IVOA identifier.
type IVOID struct {
	authority string
	path      string
	fragment  string
}

var authorityRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._~-]*$`)

var pathRegex = regexp.MustCompile(`^(/[a-z0-9._~*'()+,=-]+)*$`)

// Parse creates a validated IVOID from a string, normalizing it to lowercase.
func Parse(s string) (IVOID, error) {
	if s == "" {
		return IVOID{}, fmt.Errorf("ivoid cannot be empty")
	}
	if strings.ContainsAny(s, " \t\n") {
		return IVOID{}, fmt.Errorf("invalid ivoid %q: contains whitespace", s)
	}

	lower := strings.ToLower(s)
	rest, ok := strings.CutPrefix(lower, "ivo://")
	if !ok {
		return IVOID{}, fmt.Errorf("invalid ivoid %q: must start with ivo://", s)
	}

	var id IVOID
	if idx := strings.Index(rest, "#"); idx != -1 {
		id.fragment = rest[idx+1:]
		rest = rest[:idx]
		if id.fragment == "" {
			return IVOID{}, fmt.Errorf("invalid ivoid %q: empty fragment", s)
		}
	}

	if idx := strings.Index(rest, "/"); idx != -1 {
		id.authority = rest[:idx]
		id.path = rest[idx:]
	} else {
		id.authority = rest
	}

	if id.authority == "" {
		return IVOID{}, fmt.Errorf("invalid ivoid %q: empty authority", s)
	}
	if !authorityRegex.MatchString(id.authority) {
		return IVOID{}, fmt.Errorf("invalid ivoid %q: authority must match pattern [a-z0-9][a-z0-9._~-]*", s)
	}
	if id.path != "" && !pathRegex.MatchString(id.path) {
		return IVOID{}, fmt.Errorf("invalid ivoid %q: malformed resource path", s)
	}

	return id, nil
}

// MustParse creates an IVOID or panics. Use only for constants/tests.
func MustParse(s string) IVOID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the normalized identifier string.
func (id IVOID) String() string {
	if id.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("ivo://")
	b.WriteString(id.authority)
	b.WriteString(id.path)
	if id.fragment != "" {
		b.WriteString("#")
		b.WriteString(id.fragment)
	}
	return b.String()
}

// IsEmpty returns true if this is a zero-value IVOID.
func (id IVOID) IsEmpty() bool {
	return id.authority == ""
}

// Authority returns the authority component (e.g. "ivoa.net").
func (id IVOID) Authority() string {
	return id.authority
}

// Path returns the resource path including its leading slash, or "".
func (id IVOID) Path() string {
	return id.path
}

// Fragment returns the standard-key fragment without the "#", or "".
func (id IVOID) Fragment() string {
	return id.fragment
}

// WithoutFragment returns the registry part of the identifier, dropping
// any standard key. Registry tables key resources on this form.
func (id IVOID) WithoutFragment() IVOID {
	return IVOID{authority: id.authority, path: id.path}
}

// Equal reports whether two identifiers denote the same resource key.
func (id IVOID) Equal(other IVOID) bool {
	return id == other
}
