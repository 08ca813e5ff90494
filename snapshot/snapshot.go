package snapshot

import (
	"sort"
	"time"

	regtap "github.com/openvo/go-regtap"
	"github.com/openvo/go-regtap/ivoid"
)

// snapshotVersion is the schema version written into new snapshots.
const snapshotVersion = 1

// Snapshot is the recorded outcome of one registry search.
type Snapshot struct {
	// Version is the snapshot schema version.
	Version int `yaml:"version"`

	// Taken is when the snapshot was captured, in UTC.
	Taken time.Time `yaml:"taken"`

	// Endpoint is the registry endpoint that answered the search.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Query is the ADQL that produced the result, when known.
	Query string `yaml:"query,omitempty"`

	// Entries maps resource identifiers to their recorded state.
	Entries map[string]Entry `yaml:"entries"`
}

// Entry is the recorded state of one resource.
type Entry struct {
	// Title is the resource title at capture time.
	Title string `yaml:"title"`

	// ShortName is the publisher's abbreviation, when declared.
	ShortName string `yaml:"short_name,omitempty"`

	// Updated is the registry update timestamp at capture time.
	Updated time.Time `yaml:"updated,omitempty"`

	// Services lists the standard protocol families the resource
	// published, sorted.
	Services []string `yaml:"services,omitempty"`
}

// New creates an empty snapshot stamped with the current time.
func New() *Snapshot {
	return &Snapshot{
		Version: snapshotVersion,
		Taken:   time.Now().UTC(),
		Entries: make(map[string]Entry),
	}
}

// FromResult captures a search result.
func FromResult(result *regtap.SearchResult) *Snapshot {
	snap := New()
	if result == nil {
		return snap
	}

	snap.Endpoint = result.Endpoint
	snap.Query = result.Query
	for _, res := range result.Resources {
		snap.Entries[res.IVOID] = Entry{
			Title:     res.Title,
			ShortName: res.ShortName,
			Updated:   res.Updated,
			Services:  serviceTypes(res),
		}
	}
	return snap
}

// Len returns the number of recorded resources.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// IVOIDs returns the recorded identifiers, sorted.
func (s *Snapshot) IVOIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.Entries))
	for id := range s.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// serviceNames maps base standard identifiers to the short protocol
// names snapshots record.
var serviceNames = map[string]string{
	ivoid.StdConeSearch.String(): "conesearch",
	ivoid.StdSIA.String():        "sia",
	ivoid.StdSSA.String():        "ssa",
	ivoid.StdTAP.String():        "tap",
}

// serviceTypes lists the standard protocol families among a resource's
// capabilities, each at most once, sorted.
func serviceTypes(res regtap.Resource) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, capability := range res.Capabilities {
		std, err := ivoid.Parse(capability.StandardID)
		if err != nil {
			continue
		}
		name, ok := serviceNames[std.WithoutFragment().String()]
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
