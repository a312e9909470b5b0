// Package arena implements a chunked arena allocator: stable-address
// byte allocation in fixed-size chunks. See doc.go for the full design.
package arena

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// ChunkClass selects the fixed size of chunks an Arena allocates.
type ChunkClass int

// Chunk size classes, named after the document activity level they are
// intended for.
const (
	Tiny   ChunkClass = 64 * 1024
	Small  ChunkClass = 1024 * 1024
	Medium ChunkClass = 4 * 1024 * 1024
	Large  ChunkClass = 16 * 1024 * 1024
)

// ErrValueTooLarge is returned by Allocate when the requested byte
// range cannot fit in a single chunk of the arena's class.
var ErrValueTooLarge = errors.New("arena: allocation larger than chunk class")

// ChunkState is advisory lifecycle metadata for a chunk; the in-scope
// core never acts on it (persistence/archival are non-goals), but it is
// tracked so an out-of-scope durability layer can read it.
type ChunkState int32

const (
	StateActive ChunkState = iota
	StateSealed
	StatePersisted
	StateArchived
)

// ChunkRef uniquely names a byte range inside one chunk of an Arena.
// Once written, the referenced bytes are immutable for the life of the
// chunk; the chunk never dangles while any ChunkRef into it is held,
// because an Arena never frees or moves a chunk it has allocated.
type ChunkRef struct {
	ChunkID uint32
	Offset  uint32
	Length  uint32
}

type chunk struct {
	data  []byte
	used  atomic.Uint32
	state atomic.Int32
}

// Arena is a single fixed-class chunked byte allocator. Allocation is an
// atomic add on the current chunk's used-bytes counter; when a chunk
// would overflow, a mutex-guarded "seal current, append new chunk" path
// runs (rare — only once per chunk's lifetime). The chunk list itself is
// read under the same mutex, by Allocate and Read alike.
type Arena struct {
	class  ChunkClass
	mu     sync.Mutex // guards chunks slice growth only
	chunks []*chunk
	cur    atomic.Uint32 // index of the chunk currently accepting writes
}

// New creates an empty Arena of the given chunk class with one initial
// chunk.
func New(class ChunkClass) *Arena {
	a := &Arena{class: class}
	a.chunks = append(a.chunks, newChunkOf(class))
	return a
}

func newChunkOf(class ChunkClass) *chunk {
	return &chunk{data: make([]byte, class)}
}

// Allocate reserves n bytes at a stable address and returns a ChunkRef
// to them. The returned bytes are zeroed; callers write into them via
// Read (which returns the backing slice directly — zero-copy).
func (a *Arena) Allocate(n int) (ChunkRef, error) {
	if n < 0 || n > int(a.class) {
		return ChunkRef{}, ErrValueTooLarge
	}
	for {
		idx := a.cur.Load()
		c := a.chunkAt(idx)
		off := c.used.Add(uint32(n)) - uint32(n)
		if off+uint32(n) <= uint32(a.class) {
			return ChunkRef{ChunkID: idx, Offset: off, Length: uint32(n)}, nil
		}
		// Overflowed this chunk: roll back our reservation's visibility
		// by simply not using it, and ensure a new chunk exists.
		a.sealAndGrow(idx)
	}
}

func (a *Arena) chunkAt(idx uint32) *chunk {
	a.mu.Lock()
	c := a.chunks[idx]
	a.mu.Unlock()
	return c
}

// sealAndGrow seals the chunk at idx (if not already sealed) and
// ensures the arena's current chunk pointer has advanced past it. This
// is the rare, mutex-guarded path; Read and Allocate calls that need the
// chunk list wait while it runs.
func (a *Arena) sealAndGrow(idx uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cur.Load() != idx {
		// Another goroutine already grew the arena past this chunk.
		return
	}
	a.chunks[idx].state.Store(int32(StateSealed))
	a.chunks = append(a.chunks, newChunkOf(a.class))
	a.cur.Store(uint32(len(a.chunks) - 1))
	log.Debug().Int("chunk_count", len(a.chunks)).Msg("arena: sealed chunk and grew")
}

// Read returns the zero-copy byte slice named by ref. The slice is
// valid for the lifetime of the Arena.
func (a *Arena) Read(ref ChunkRef) []byte {
	c := a.chunkAt(ref.ChunkID)
	return c.data[ref.Offset : ref.Offset+ref.Length]
}

// Write copies src into the chunk range named by ref. ref must have
// been produced by a prior Allocate call on this Arena with
// len(src) <= ref.Length.
func (a *Arena) Write(ref ChunkRef, src []byte) {
	dst := a.Read(ref)
	copy(dst, src)
}

// ChunkCount returns the number of chunks currently held by the arena.
func (a *Arena) ChunkCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.chunks)
}
