// Package optindex implements OptimisedIndex: a frozen
// minimal-perfect-hash base fronted by a lock-free radix overlay,
// giving O(1) confirmed reads with bounded-latency writes that never
// block on a rebuild. See doc.go for the full design and the
// epoch/reclamation compromise made for a garbage-collected runtime.
package optindex

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/econic-ai/massive-graph/internal/mph"
	"github.com/econic-ai/massive-graph/internal/radix"
)

// ErrPublishInProgress is returned by Publish when another publish is
// already running; publishes never stack, they serialize.
var ErrPublishInProgress = errors.New("optindex: publish already in progress")

// Index is the hybrid structure: Get checks the overlay first (which
// may hold a fresher value, a tombstone, or nothing for a given key),
// falling through to the frozen base only on an overlay miss.
type Index[K comparable, V any] struct {
	toBytes     mph.KeyBytes[K]
	seed        mph.Seed
	keyLenBytes int

	base    atomic.Pointer[mph.Table[K, V]]
	overlay *radix.Overlay[V]

	// seen recovers K from its byte encoding for keys written through
	// Upsert/Remove, so Publish can fold overlay entries (which the
	// radix trie only knows by byte key) back into a map[K]V without
	// requiring K itself to be byte-derivable in reverse.
	seen sync.Map // string(bytes) -> K

	publishing atomic.Bool
	readers    atomic.Int64 // pinned-reader epoch; see doc.go
}

// New creates an empty Index. keyLenBytes is the fixed byte width of K
// once run through toBytes (e.g. 16 for id.ID16); seed is the
// deterministic MPH seed shared by every base rebuild.
func New[K comparable, V any](keyLenBytes int, toBytes mph.KeyBytes[K], seed mph.Seed) *Index[K, V] {
	x := &Index[K, V]{
		toBytes:     toBytes,
		seed:        seed,
		keyLenBytes: keyLenBytes,
		overlay:     radix.New[V](keyLenBytes),
	}
	x.base.Store(mph.BuildTable[K, V](map[K]V{}, toBytes, seed))
	return x
}

func (x *Index[K, V]) pin() { x.readers.Add(1) }

func (x *Index[K, V]) unpin() { x.readers.Add(-1) }

// Get returns the current value for k, checking the overlay before the
// frozen base. A tombstoned key reads as not-found even if the base
// still carries a stale entry for it.
func (x *Index[K, V]) Get(k K) (V, bool) {
	x.pin()
	defer x.unpin()

	kb := x.toBytes(k)
	if v, tomb, found := x.overlay.Get(kb); found {
		var zero V
		if tomb {
			return zero, false
		}
		return v, true
	}
	return x.base.Load().Lookup(k, x.toBytes, x.seed)
}

// ContainsKey reports whether k currently resolves to a live value.
func (x *Index[K, V]) ContainsKey(k K) bool {
	_, ok := x.Get(k)
	return ok
}

// Upsert inserts or overwrites k's value. The write lands in the
// overlay immediately and is visible to the next Get; it does not wait
// for a Publish.
func (x *Index[K, V]) Upsert(k K, v V) {
	kb := x.toBytes(k)
	x.seen.Store(string(kb), k)
	x.overlay.Upsert(kb, v)
}

// Remove tombstones k in the overlay. The key reads as absent
// immediately, even though the frozen base may still hold a stale
// entry until the next Publish folds the overlay in.
func (x *Index[K, V]) Remove(k K) {
	kb := x.toBytes(k)
	x.seen.Store(string(kb), k)
	x.overlay.Remove(kb)
}

// Len returns the current number of live keys, merging the frozen base
// with the overlay's deltas. O(n) — the live-document count is not a
// hot path; callers on a hot path should track their own counters
// instead of polling Len.
func (x *Index[K, V]) Len() int {
	base := x.base.Load()
	live := map[string]struct{}{}
	base.Iter(func(k K, _ V) {
		live[string(x.toBytes(k))] = struct{}{}
	})
	x.overlay.Walk(func(e radix.Entry[V]) {
		if e.Tomb {
			delete(live, string(e.Key))
		} else {
			live[string(e.Key)] = struct{}{}
		}
	})
	return len(live)
}

// Publish folds the overlay into a fresh frozen base: every live
// (non-tombstoned) key, whether from the old base or the overlay,
// becomes an entry in the new MPH table; tombstoned keys are dropped
// entirely. The new base is installed with a single atomic store, then
// the overlay is cleared — in that order, so no reader ever observes a
// window where a key is absent from both.
//
// Publish serializes against concurrent Publish calls via a CAS-guarded
// flag; it does not block concurrent Get/Upsert/Remove, which continue
// to operate on the outgoing base/overlay pair until the swap lands.
func (x *Index[K, V]) Publish() error {
	if !x.publishing.CompareAndSwap(false, true) {
		return ErrPublishInProgress
	}
	defer x.publishing.Store(false)

	oldBase := x.base.Load()
	merged := map[K]V{}
	oldBase.Iter(func(k K, v V) { merged[k] = v })

	x.overlay.Walk(func(e radix.Entry[V]) {
		kv, ok := x.seen.Load(string(e.Key))
		if !ok {
			// Every overlay entry was written via Upsert/Remove, which
			// always records its K in seen first; this branch is
			// unreachable in practice but kept as a defensive skip
			// rather than a panic on a key Publish can't recover.
			return
		}
		k := kv.(K)
		if e.Tomb {
			delete(merged, k)
		} else {
			merged[k] = e.Val
		}
	})

	readersAtPublish := x.readers.Load()
	log.Debug().Int("entries", len(merged)).Int64("pinned_readers", readersAtPublish).Msg("optindex: publishing new base")

	newBase := mph.BuildTable[K, V](merged, x.toBytes, x.seed)
	x.base.Store(newBase)
	x.overlay.Clear()
	return nil
}
