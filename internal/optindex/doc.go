// Package optindex ties together mph (the frozen base) and radix (the
// mutable overlay) into a hybrid read-optimized index that still
// accepts writes without rebuilding.
//
// # Read path
//
// Get checks the overlay first. Three outcomes: the overlay has a live
// value (return it), the overlay has a tombstone (return not-found,
// full stop — do not consult the base), or the overlay has nothing for
// this key (fall through to the base table's tag16/hash64/key-confirmed
// lookup). This ordering is what makes delete-then-republish safe: a
// tombstone always wins over a stale base entry until Publish clears
// it away for good.
//
// # Write path
//
// Upsert and Remove only ever touch the overlay; the base is rebuilt
// exclusively by Publish. This is why writes never block on a rebuild —
// they're O(trie depth), not O(n).
//
// # Publish
//
// Publish folds the overlay into a brand-new frozen mph.Table (old base
// entries, overwritten or shadowed by the overlay, tombstones dropped
// entirely) and installs it with one atomic.Pointer store, then clears
// the overlay. Installing the new base before clearing the overlay
// means there is no window where a key is missing from both structures
// at once. Only one Publish runs at a time; a second call while one is
// in flight returns ErrPublishInProgress rather than queuing — rebuild
// scheduling is the caller's responsibility, not the index's.
//
// # Reclamation: GC instead of manual epochs
//
// An epoch-based design retires the old base/overlay pair only once
// every in-flight reader has finished with it, freeing the memory by
// hand at that point. Go has no by-hand free; the runtime's GC already
// won't collect the old *mph.Table while any goroutine holds a
// reference to it from a Get call in flight. The readers counter
// (pin/unpin) is kept anyway — not for correctness, but because it's
// cheap and gives Publish (and tests) a way to observe how many readers
// were mid-flight at swap time, which is useful for diagnosing
// contention even though no code waits on it before proceeding. This
// is a deliberate simplification, not a missing feature: a reader-count
// epoch exists to make manual free safe; a GC makes that problem not
// exist in the first place.
package optindex
