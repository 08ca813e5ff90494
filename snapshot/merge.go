package snapshot

// Merge combines two snapshots into a new one holding the union of
// their entries. When both record the same resource, the entry with
// the newer registry update timestamp wins; on a tie the entry from
// the later-taken snapshot wins.
//
// The merged snapshot carries the metadata (taken time, endpoint,
// query) of whichever input was taken later. Nil inputs are treated
// as empty.
func Merge(a, b *Snapshot) *Snapshot {
	merged := New()

	newer, older := b, a
	if a != nil && (b == nil || a.Taken.After(b.Taken)) {
		newer, older = a, b
	}
	if newer != nil {
		merged.Endpoint = newer.Endpoint
		merged.Query = newer.Query
		merged.Taken = newer.Taken
	}

	if older != nil {
		for id, entry := range older.Entries {
			merged.Entries[id] = entry
		}
	}
	if newer != nil {
		for id, entry := range newer.Entries {
			existing, exists := merged.Entries[id]
			if exists && existing.Updated.After(entry.Updated) {
				continue
			}
			merged.Entries[id] = entry
		}
	}

	return merged
}
