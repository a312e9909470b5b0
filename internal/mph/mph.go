// Package mph implements a minimal perfect hash indexer and the frozen
// table it builds: a BBHash-style level construction over a frozen key
// set, keyed with a deterministic, fixed-seed hash so that two
// independent builds from the same key set produce the same mapping.
// See doc.go for the construction in full.
package mph

import (
	"math/bits"

	"github.com/dchest/siphash"
)

// Seed is the deterministic (k0, k1) siphash key pair used to hash keys
// during MPH construction and evaluation. This MUST be fixed (or
// derived deterministically per schema family) rather than
// process-randomized — hashing with Go's map iteration order or a
// per-process maphash.Hash seed here would silently break Indexer
// determinism across restarts, since the same key set would then build
// a different mapping every run.
type Seed struct {
	K0, K1 uint64
}

// DefaultSeed is the core-wide constant seed used when callers don't
// provide a per-schema-family seed.
var DefaultSeed = Seed{K0: 0x6d6173736976656c, K1: 0x677261706820f00d}

const (
	gamma        = 1.3
	maxLevels    = 32
	fallbackFrom = maxLevels - 1 // last level is a guaranteed direct assignment
)

type bitset struct {
	bits []uint64
	n    int
}

func newBitset(n int) *bitset {
	return &bitset{bits: make([]uint64, (n+63)/64), n: n}
}

func (b *bitset) set(i int) bool {
	word := i / 64
	mask := uint64(1) << uint(i%64)
	if b.bits[word]&mask != 0 {
		return false
	}
	b.bits[word] |= mask
	return true
}

func (b *bitset) test(i int) bool {
	word := i / 64
	mask := uint64(1) << uint(i%64)
	return b.bits[word]&mask != 0
}

// rank returns the number of set bits at indices < i.
func (b *bitset) rank(i int) int {
	count := 0
	word := i / 64
	for w := 0; w < word; w++ {
		count += bits.OnesCount64(b.bits[w])
	}
	rem := i % 64
	if rem > 0 {
		count += bits.OnesCount64(b.bits[word] & (1<<uint(rem) - 1))
	}
	return count
}

type level struct {
	size int
	set  *bitset
	base int // rank offset: index of the first key resolved at this level
}

// Indexer is a frozen minimal perfect hash over a key set of size n:
// Eval(key) returns a value in [0, n) that is a bijection when key is a
// member of the original key set used to Build the indexer.
type Indexer struct {
	seed     Seed
	n        int
	levels   []level
	fallback map[string]int // direct assignment for the rare keys that never resolve via bitmaps
}

// Build constructs an Indexer over keys. The same keys slice (in any
// order — keys are only used by value, never by position) always
// produces the same Eval mapping for a given seed: the construction is
// fully determined by (seed, set of keys).
func Build(keys [][]byte, seed Seed) *Indexer {
	n := len(keys)
	idx := &Indexer{seed: seed, n: n, fallback: map[string]int{}}
	if n == 0 {
		return idx
	}

	remaining := make([][]byte, n)
	copy(remaining, keys)
	resolvedSoFar := 0

	for lvl := 0; lvl < maxLevels && len(remaining) > 0; lvl++ {
		if lvl == fallbackFrom {
			// Guaranteed-termination fallback: whatever keys survived
			// every probabilistic level get a direct, sorted
			// assignment. With gamma > 1 this path is vanishingly rare
			// in practice but must exist for a total function.
			sortByBytes(remaining)
			for _, k := range remaining {
				idx.fallback[string(k)] = resolvedSoFar
				resolvedSoFar++
			}
			remaining = nil
			break
		}

		size := int(float64(len(remaining))*gamma) + 1
		bs := newBitset(size)
		count := make([]int16, size)

		for _, k := range remaining {
			pos := int(hashAt(seed, lvl, k) % uint64(size))
			if count[pos] < 2 {
				count[pos]++
			}
		}
		var collided [][]byte
		for _, k := range remaining {
			pos := int(hashAt(seed, lvl, k) % uint64(size))
			if count[pos] == 1 {
				bs.set(pos)
			} else {
				collided = append(collided, k)
			}
		}

		idx.levels = append(idx.levels, level{size: size, set: bs, base: resolvedSoFar})
		resolvedSoFar += bs.rank(size)
		remaining = collided
	}

	return idx
}

// hashAt derives a per-level hash of key k by mixing the level index
// into the siphash k1 key — this is the BBHash trick of re-hashing
// colliding keys with a different function at each level, done here
// deterministically instead of with a random per-level salt.
func hashAt(seed Seed, level int, k []byte) uint64 {
	return siphash.Hash(seed.K0, seed.K1^uint64(level+1)*0x9E3779B97F4A7C15, k)
}

// sortByBytes sorts keys lexicographically in place; used only by the
// fallback level, which needs a deterministic (not hash-dependent)
// total order to assign slots.
func sortByBytes(keys [][]byte) {
	// insertion sort is adequate: the fallback level is reached for at
	// most a handful of keys in any real build.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && less(keys[j], keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}

func less(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Len returns the size of the frozen key set, n.
func (idx *Indexer) Len() int { return idx.n }

// Eval returns a value in [0, n) for key. For a member of the key set
// Build was called with, Eval is a bijection onto [0, n). For a
// non-member, Eval still returns some value in [0, n) — callers MUST
// confirm membership independently (the MPH base table does this via
// tag16/hash64/key comparison); Eval alone never reports "not found".
func (idx *Indexer) Eval(k []byte) int {
	if idx.n == 0 {
		return 0
	}
	for i, lvl := range idx.levels {
		pos := int(hashAt(idx.seed, i, k) % uint64(lvl.size))
		if lvl.set.test(pos) {
			return lvl.base + lvl.set.rank(pos)
		}
	}
	if v, ok := idx.fallback[string(k)]; ok {
		return v
	}
	// Exhausted every level without a set bit (only possible for a
	// non-member whose per-level hashes never collide with a resolved
	// slot): fall back to a stable, in-range value.
	return 0
}
