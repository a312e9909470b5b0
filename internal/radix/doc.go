// Package radix is the mutable half of the hybrid index: a lock-free
// overlay that absorbs writes between MPH base rebuilds.
//
// # Structure
//
// A trie over nibbles (4 bits) rather than bytes: a 16-byte key is 32
// levels deep, each level fanning out 16 ways. Nibble granularity keeps
// each node small (16 child pointers + one value pointer) at the cost
// of extra depth versus a byte-indexed (256-way) trie — the tradeoff
// the spec calls out explicitly for this layer.
//
// # Lock-freedom
//
// Every child link is installed with a single CompareAndSwap; a reader
// that loses the race to a concurrent insert simply re-reads the
// winning pointer. Terminal values are swapped with a single atomic
// store of a *slotValue, so readers never see a half-constructed value.
// No writer ever blocks another writer or a reader.
//
// # Tombstones
//
// Remove does not unlink a node from the trie (that would require
// coordinating with concurrent readers walking through it); it writes
// a tombstone slotValue instead. OptimisedIndex.Get treats a tombstone
// as "deleted, stop — do not fall through to the MPH base", which is
// what makes delete-then-rebuild safe: a key removed from the overlay
// must not reappear just because it's still present in the frozen base.
package radix
