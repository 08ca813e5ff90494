// Package snapshot persists registry search results for later comparison.
//
// The registry is a living system: resources are registered, retitled,
// updated, and withdrawn over time. A snapshot captures the outcome of one
// search so a later run can report what changed.
//
// # Snapshot Structure
//
// A snapshot records:
//   - when it was taken and which registry endpoint answered
//   - the ADQL query that produced it
//   - one entry per matched resource: title, short name, update
//     timestamp, and the standard service types it publishes
//
// # Usage
//
// Capture and save a search:
//
//	result, err := client.Search(ctx, cons)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	snap := snapshot.FromResult(result)
//	if err := snap.Save("xray-services.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
// Compare against an earlier run:
//
//	old, err := snapshot.Load("xray-services.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	diff := snapshot.Compare(old, snapshot.FromResult(result))
//	if !diff.IsEmpty() {
//	    fmt.Println(diff.Summary())
//	}
package snapshot
