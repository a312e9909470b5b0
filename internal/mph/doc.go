// Package mph implements a minimal perfect hash (MPH) indexer and the
// frozen base table built on top of it.
//
// # Construction
//
// Build runs a BBHash-style leveled construction: at level L, every
// remaining key is hashed (with a level-salted, fixed-seed siphash) into
// a bitmap of size ⌈γ·|remaining|⌉ (γ = 1.3 by default). Keys that land
// on a bitmap slot no other remaining key also lands on are "resolved"
// at this level; colliding keys fall through to level L+1 with a fresh
// hash. Each level's bitmap gets a rank structure (prefix-summed popcount)
// so a resolved key's final index is (keys resolved in earlier levels) +
// (rank of its bit within this level's bitmap) — a value in [0, n) with
// no two keys ever sharing a value, by construction.
//
// A final fallback level guarantees termination: any keys still
// unresolved after the probabilistic levels (vanishingly rare with
// γ > 1, but not impossible) are sorted and assigned slots directly,
// keeping Build a total function over any key set.
//
// # Determinism
//
// The seed — (k0, k1) passed into siphash — is fixed per core instance
// (or per schema family), never process-randomized. A process-randomized
// hash makes the slot mapping different on every rebuild, which breaks
// any code that assumes a rebuilt index agrees with the previous one.
// Same keys + same seed always produce the same mapping, on any
// machine, on any run.
//
// # Non-member safety
//
// Eval(k) for a k never passed to Build still returns some value in
// [0, n) — an MPH has no way to detect non-membership on its own. The
// Table built on top of an Indexer is what provides non-member safety:
// every slot stores a 16-bit tag and a 64-bit hash of its true key, and
// Lookup rejects a slot whose stored tag/hash/key don't match the
// query, even if Eval happened to route the query to that slot.
package mph
