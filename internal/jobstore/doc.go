// Package jobstore holds the ordered results produced by completed async tasks.
//
// A Store is created once at startup and handed to every component that reads
// or writes results. Its backing list does not exist until the first Record,
// so readers can tell "nothing ever completed" apart from "completed, empty".
//
//	store := jobstore.New()
//	store.Record("a", "b")
//	if entries, ok := store.Snapshot(); ok {
//	    fmt.Println(entries) // [a b]
//	}
//
// Entries are append-only. Each Record call appends its entries under a single
// lock acquisition, so entries from concurrent Record calls never interleave.
// Snapshot returns a copy and never exposes the backing slice.
package jobstore
