package mph

import "github.com/dchest/siphash"

// Table is the frozen MPH base table: parallel arrays of length n
// indexed by an Indexer's Eval(key), giving O(1) confirmed lookup with a
// 16-bit tag for quick rejection before the full hash/key comparison.
//
// K is typically id.ID16; V is typically a stream.Index[T] or a pointer
// to a document/user-space value.
type Table[K comparable, V any] struct {
	indexer *Indexer
	tag16   []uint16
	hash64  []uint64
	keys    []K
	values  []V
	present []bool
}

// KeyBytes extracts the raw bytes of a key for hashing; callers provide
// it because K is an arbitrary comparable type (e.g. a fixed-size array
// alias), not necessarily []byte itself.
type KeyBytes[K comparable] func(K) []byte

// BuildTable builds a Table over the given key/value pairs using seed
// for both the Indexer construction and the per-slot hash64/tag16
// fields (the same deterministic siphash keys throughout, so two
// independent builds from the same entries produce byte-identical
// tables).
func BuildTable[K comparable, V any](entries map[K]V, toBytes KeyBytes[K], seed Seed) *Table[K, V] {
	n := len(entries)
	keyList := make([]K, 0, n)
	byteList := make([][]byte, 0, n)
	for k := range entries {
		keyList = append(keyList, k)
		byteList = append(byteList, toBytes(k))
	}

	indexer := Build(byteList, seed)

	t := &Table[K, V]{
		indexer: indexer,
		tag16:   make([]uint16, n),
		hash64:  make([]uint64, n),
		keys:    make([]K, n),
		values:  make([]V, n),
		present: make([]bool, n),
	}

	for i, k := range keyList {
		kb := byteList[i]
		slot := indexer.Eval(kb)
		h := siphash.Hash(seed.K0, seed.K1, kb)
		t.tag16[slot] = tag16Of(h)
		t.hash64[slot] = h
		t.keys[slot] = k
		t.values[slot] = entries[k]
		t.present[slot] = true
	}

	return t
}

func tag16Of(h uint64) uint16 { return uint16(h >> 48) }

// Len returns n, the number of entries in the table (0 is legal).
func (t *Table[K, V]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Lookup performs the tag16 → hash64 → key confirmation chain and
// returns the associated value on a confirmed hit.
func (t *Table[K, V]) Lookup(k K, toBytes KeyBytes[K], seed Seed) (V, bool) {
	var zero V
	if t == nil || len(t.keys) == 0 {
		return zero, false
	}
	kb := toBytes(k)
	slot := t.indexer.Eval(kb)
	if slot < 0 || slot >= len(t.keys) || !t.present[slot] {
		return zero, false
	}
	h := siphash.Hash(seed.K0, seed.K1, kb)
	if t.tag16[slot] != tag16Of(h) {
		return zero, false
	}
	if t.hash64[slot] != h {
		return zero, false
	}
	if t.keys[slot] != k {
		return zero, false
	}
	return t.values[slot], true
}

// Iter calls fn for every (key, value) pair in the table, in slot
// (MPH) order.
func (t *Table[K, V]) Iter(fn func(K, V)) {
	if t == nil {
		return
	}
	for i := range t.keys {
		if t.present[i] {
			fn(t.keys[i], t.values[i])
		}
	}
}
