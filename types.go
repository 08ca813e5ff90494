package regtap

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Resource represents one registry record: a catalog, archive, or
// service described by its publisher. The base fields come straight
// from the rr.resource table; Capabilities and the remaining slices
// are filled in by the capability and enrichment queries.
type Resource struct {
	// IVOID is the registry identifier, normalized to lowercase.
	IVOID string `json:"ivoid" yaml:"ivoid"`

	// Type is the resource class, e.g. "vs:catalogservice".
	Type string `json:"res_type,omitempty" yaml:"res_type,omitempty"`

	// Title is the full human-readable resource title.
	Title string `json:"title" yaml:"title"`

	// ShortName is the publisher's abbreviation, often a catalog name.
	ShortName string `json:"short_name,omitempty" yaml:"short_name,omitempty"`

	// Description is the publisher's free-text summary.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Wavebands lists the spectral coverage, e.g. ["optical", "x-ray"].
	Wavebands []string `json:"wavebands,omitempty" yaml:"wavebands,omitempty"`

	// ReferenceURL points to the publisher's documentation page.
	ReferenceURL string `json:"reference_url,omitempty" yaml:"reference_url,omitempty"`

	// Creators lists the authors as declared in the creator sequence.
	Creators []string `json:"creators,omitempty" yaml:"creators,omitempty"`

	// ContentLevel describes the intended audience, e.g. "research".
	ContentLevel string `json:"content_level,omitempty" yaml:"content_level,omitempty"`

	// Created and Updated are the record timestamps reported by the
	// registry. Zero when the registry left them out.
	Created time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	Updated time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`

	// Capabilities lists the service endpoints this resource publishes,
	// grouped by capability index.
	Capabilities []Capability `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`

	// Roles lists the people and organisations attached to the record.
	// Filled by enrichment; empty when enrichment was skipped or failed.
	Roles []Role `json:"roles,omitempty" yaml:"roles,omitempty"`

	// Subjects lists the topic keywords attached to the record.
	Subjects []string `json:"subjects,omitempty" yaml:"subjects,omitempty"`

	// Relationships lists links to other registry records.
	Relationships []Relationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`
}

// Capability is one standard protocol a resource speaks, such as a
// cone search or TAP endpoint. A resource can publish several.
type Capability struct {
	// Index is the cap_index distinguishing capabilities within one record.
	Index int `json:"cap_index" yaml:"cap_index"`

	// Type is the capability class, e.g. "conesearch".
	Type string `json:"cap_type,omitempty" yaml:"cap_type,omitempty"`

	// StandardID identifies the protocol, e.g. "ivo://ivoa.net/std/tap".
	StandardID string `json:"standard_id,omitempty" yaml:"standard_id,omitempty"`

	// Description is the publisher's note for this capability.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Interfaces lists the concrete ways to invoke the capability.
	Interfaces []Interface `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
}

// Interface is one concrete invocation of a capability: an access URL
// plus the declared invocation style.
type Interface struct {
	// Index is the intf_index within the capability.
	Index int `json:"intf_index" yaml:"intf_index"`

	// Type is the invocation style, e.g. "vs:paramhttp".
	Type string `json:"intf_type,omitempty" yaml:"intf_type,omitempty"`

	// Role marks how the interface relates to the standard; "std" means
	// the URL follows the protocol's invocation rules.
	Role string `json:"intf_role,omitempty" yaml:"intf_role,omitempty"`

	// Version is the protocol version the interface implements.
	Version string `json:"std_version,omitempty" yaml:"std_version,omitempty"`

	// AccessURL is the endpoint to invoke.
	AccessURL string `json:"access_url" yaml:"access_url"`

	// URLUse qualifies the URL: "base" needs parameters appended,
	// "full" is complete as given.
	URLUse string `json:"url_use,omitempty" yaml:"url_use,omitempty"`
}

// IsStandard reports whether the interface follows the standard
// invocation rules for its capability.
func (i Interface) IsStandard() bool {
	return strings.EqualFold(i.Role, "std")
}

// Role is a person or organisation attached to a resource record.
type Role struct {
	// Name is the role's display name.
	Name string `json:"name" yaml:"name"`

	// Base classifies the role: "creator", "publisher", "contact", or
	// "contributor".
	Base string `json:"base_role" yaml:"base_role"`

	// Email is the contact address, when published.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Relationship links a resource to another registry record, for
// example a data collection to the service that serves it.
type Relationship struct {
	// Type is the relationship kind, e.g. "served-by" or "derived-from".
	Type string `json:"relationship_type" yaml:"relationship_type"`

	// RelatedIVOID identifies the other record.
	RelatedIVOID string `json:"related_id" yaml:"related_id"`

	// RelatedName is the other record's display name, when published.
	RelatedName string `json:"related_name,omitempty" yaml:"related_name,omitempty"`
}

// Service is a resolved invocation target: one resource narrowed down
// to a single standard endpoint.
type Service struct {
	// IVOID identifies the resource the endpoint belongs to.
	IVOID string `json:"ivoid"`

	// Title is the resource title, for display.
	Title string `json:"title,omitempty"`

	// Type is the protocol family the endpoint speaks.
	Type ServiceType `json:"type"`

	// StandardID is the exact standard identifier that matched,
	// including any version fragment.
	StandardID string `json:"standard_id"`

	// Version is the protocol version, when declared.
	Version string `json:"version,omitempty"`

	// BaseURL is the standard interface's access URL.
	BaseURL string `json:"base_url"`
}

// ServiceType names a standard data-access protocol family.
type ServiceType string

// Service types recognised in search constraints and resolution.
const (
	ServiceConeSearch ServiceType = "conesearch"
	ServiceSIA        ServiceType = "sia"
	ServiceSSA        ServiceType = "ssa"
	ServiceTAP        ServiceType = "tap"
)

// Valid reports whether the service type maps to a known standard
// identifier. Aliases like "scs" or "image" are accepted.
func (s ServiceType) Valid() bool {
	if s == "" {
		return false
	}
	_, ok := standardIDFor(s)
	return ok
}

// Wavebands lists the spectral coverage terms the registry vocabulary
// defines, from long to short wavelengths.
var Wavebands = []string{
	"radio",
	"millimeter",
	"infrared",
	"optical",
	"uv",
	"euv",
	"x-ray",
	"gamma-ray",
}

// ValidWaveband reports whether w is a registry waveband term,
// compared case-insensitively.
func ValidWaveband(w string) bool {
	for _, known := range Wavebands {
		if strings.EqualFold(w, known) {
			return true
		}
	}
	return false
}

// SearchResult holds the resources matched by one search, together
// with where the answer came from.
type SearchResult struct {
	// Resources are the matched records, ordered by identifier.
	Resources []Resource `json:"resources"`

	// Endpoint is the registry endpoint that answered.
	Endpoint string `json:"endpoint"`

	// Query is the ADQL the constraints rendered into.
	Query string `json:"query,omitempty"`

	// Overflow marks a result truncated at the service row limit;
	// more records matched than were returned.
	Overflow bool `json:"overflow,omitempty"`
}

// Len returns the number of matched resources.
func (r *SearchResult) Len() int {
	return len(r.Resources)
}

// IVOIDs returns the identifiers of all matched resources, in order.
func (r *SearchResult) IVOIDs() []string {
	ids := make([]string, len(r.Resources))
	for i, res := range r.Resources {
		ids[i] = res.IVOID
	}
	return ids
}

// Find returns the matched resource with the given identifier.
// Matching is case-insensitive since identifiers are stored lowercase.
func (r *SearchResult) Find(id string) (*Resource, bool) {
	needle := strings.ToLower(strings.TrimSpace(id))
	for i := range r.Resources {
		if r.Resources[i].IVOID == needle {
			return &r.Resources[i], true
		}
	}
	return nil, false
}

// SortByTitle reorders the resources alphabetically by title.
func (r *SearchResult) SortByTitle() {
	sort.Slice(r.Resources, func(i, j int) bool {
		return r.Resources[i].Title < r.Resources[j].Title
	})
}

// QueryError is returned when every endpoint in the chain failed to
// answer a query. It records one attempt line per endpoint.
type QueryError struct {
	// Attempts holds "endpoint: error" lines in the order tried.
	Attempts []string
}

func (e *QueryError) Error() string {
	if len(e.Attempts) == 1 {
		return "query failed: " + e.Attempts[0]
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("query failed on all %d endpoints:", len(e.Attempts)))
	for _, attempt := range e.Attempts {
		sb.WriteString("\n  - ")
		sb.WriteString(attempt)
	}
	return sb.String()
}

// ServiceError reports that a resource exists but cannot be invoked
// the requested way.
type ServiceError struct {
	// IVOID identifies the resource.
	IVOID string

	// Type is the protocol family that was requested.
	Type ServiceType

	// Err is the underlying reason, usually ErrNoStdInterface or
	// ErrNotFound.
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("no %s service for %s: %v", e.Type, e.IVOID, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// registryTimeLayouts are the timestamp shapes registries actually
// emit. RegTAP prescribes UTC without a zone marker, but several
// publishers append one or drop the time part entirely.
var registryTimeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseRegistryTime parses a registry timestamp, returning the zero
// time when the value is empty or unrecognisable.
func parseRegistryTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range registryTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// splitHashList splits a registry hash-separated list ("optical#uv")
// into its terms, dropping empties.
func splitHashList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "#")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// splitCreatorSeq splits a creator sequence ("Voges, W.; Aschenbach, B.")
// into individual names.
func splitCreatorSeq(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
