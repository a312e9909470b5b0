package mph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func keysOf(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte(fmt.Sprintf("key-%06d", i))
	}
	return out
}

func TestEvalIsBijection(t *testing.T) {
	keys := keysOf(500)
	idx := Build(keys, DefaultSeed)
	require := assert.New(t)
	require.Equal(500, idx.Len())

	seen := make([]bool, 500)
	for _, k := range keys {
		v := idx.Eval(k)
		require.GreaterOrEqual(v, 0)
		require.Less(v, 500)
		require.False(seen[v], "slot %d assigned twice", v)
		seen[v] = true
	}
}

func TestEvalDeterministicAcrossBuilds(t *testing.T) {
	keys := keysOf(300)
	idx1 := Build(keys, DefaultSeed)
	idx2 := Build(keys, DefaultSeed)
	for _, k := range keys {
		assert.Equal(t, idx1.Eval(k), idx2.Eval(k))
	}
}

func TestEvalEmptySet(t *testing.T) {
	idx := Build(nil, DefaultSeed)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.Eval([]byte("anything")))
}

func TestEvalNonMemberInRange(t *testing.T) {
	keys := keysOf(50)
	idx := Build(keys, DefaultSeed)
	v := idx.Eval([]byte("not-a-member-key"))
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, 50)
}

func TestTableLookupAndNonMemberSafety(t *testing.T) {
	entries := map[string]int{}
	for i := 0; i < 64; i++ {
		entries[fmt.Sprintf("k%03d", i)] = i * 10
	}
	toBytes := func(s string) []byte { return []byte(s) }
	table := BuildTable(entries, toBytes, DefaultSeed)

	for k, want := range entries {
		got, ok := table.Lookup(k, toBytes, DefaultSeed)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := table.Lookup("not-present-at-all", toBytes, DefaultSeed)
	assert.False(t, ok)
}

func TestTableEmpty(t *testing.T) {
	entries := map[string]int{}
	toBytes := func(s string) []byte { return []byte(s) }
	table := BuildTable(entries, toBytes, DefaultSeed)
	assert.Equal(t, 0, table.Len())
	_, ok := table.Lookup("x", toBytes, DefaultSeed)
	assert.False(t, ok)
}

func TestTableIterYieldsAllEntries(t *testing.T) {
	entries := map[string]int{"a": 1, "b": 2, "c": 3}
	toBytes := func(s string) []byte { return []byte(s) }
	table := BuildTable(entries, toBytes, DefaultSeed)

	got := map[string]int{}
	table.Iter(func(k string, v int) { got[k] = v })
	assert.Equal(t, entries, got)
}
