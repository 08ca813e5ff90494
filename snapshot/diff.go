package snapshot

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Change represents a resource added to or removed from the registry
// between two snapshots.
type Change struct {
	// IVOID is the resource identifier.
	IVOID string `json:"ivoid" yaml:"ivoid"`

	// Title is the resource title, from the snapshot that has the entry.
	Title string `json:"title" yaml:"title"`
}

// Update represents a resource whose registry record changed between
// two snapshots.
type Update struct {
	// IVOID is the resource identifier.
	IVOID string `json:"ivoid" yaml:"ivoid"`

	// Title is the resource title in the newer snapshot.
	Title string `json:"title" yaml:"title"`

	// OldUpdated is the record timestamp in the older snapshot.
	OldUpdated time.Time `json:"old_updated" yaml:"old_updated"`

	// NewUpdated is the record timestamp in the newer snapshot.
	NewUpdated time.Time `json:"new_updated" yaml:"new_updated"`
}

// Diff describes the differences between two snapshots.
//
// Useful for:
//   - Watching a search for newly registered services
//   - Noticing withdrawn resources before pipelines break
//   - Auditing how a curated service list drifts over time
type Diff struct {
	// Added contains resources present in new but not in old.
	Added []Change `json:"added,omitempty" yaml:"added,omitempty"`

	// Removed contains resources present in old but not in new.
	Removed []Change `json:"removed,omitempty" yaml:"removed,omitempty"`

	// Updated contains resources whose update timestamp moved.
	Updated []Update `json:"updated,omitempty" yaml:"updated,omitempty"`
}

// IsEmpty returns true if there are no differences between the snapshots.
func (d *Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0
}

// TotalChanges returns the total number of changes.
func (d *Diff) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Updated)
}

// Summary returns a short human-readable account of the differences.
func (d *Diff) Summary() string {
	if d.IsEmpty() {
		return "no changes"
	}
	var parts []string
	if len(d.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(d.Added)))
	}
	if len(d.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(d.Removed)))
	}
	if len(d.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", len(d.Updated)))
	}
	return strings.Join(parts, ", ")
}

// Compare computes the difference between two snapshots. A nil
// snapshot is treated as empty, so comparing against a first run
// reports everything as added.
//
// Updated entries compare the registry update timestamps; two
// snapshots taken at different times with identical records produce
// an empty diff.
func Compare(old, new *Snapshot) *Diff {
	diff := &Diff{}

	oldEntries := map[string]Entry{}
	if old != nil {
		oldEntries = old.Entries
	}
	newEntries := map[string]Entry{}
	if new != nil {
		newEntries = new.Entries
	}

	for id, entry := range newEntries {
		previous, existed := oldEntries[id]
		if !existed {
			diff.Added = append(diff.Added, Change{IVOID: id, Title: entry.Title})
			continue
		}
		if !previous.Updated.Equal(entry.Updated) {
			diff.Updated = append(diff.Updated, Update{
				IVOID:      id,
				Title:      entry.Title,
				OldUpdated: previous.Updated,
				NewUpdated: entry.Updated,
			})
		}
	}

	for id, entry := range oldEntries {
		if _, exists := newEntries[id]; !exists {
			diff.Removed = append(diff.Removed, Change{IVOID: id, Title: entry.Title})
		}
	}

	// Sort for deterministic output
	sort.Slice(diff.Added, func(i, j int) bool { return diff.Added[i].IVOID < diff.Added[j].IVOID })
	sort.Slice(diff.Removed, func(i, j int) bool { return diff.Removed[i].IVOID < diff.Removed[j].IVOID })
	sort.Slice(diff.Updated, func(i, j int) bool { return diff.Updated[i].IVOID < diff.Updated[j].IVOID })

	return diff
}
