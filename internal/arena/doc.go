// Package arena provides stable-address byte allocation in fixed chunks.
//
// # Overview
//
// An Arena hands out ChunkRef values naming immutable byte ranges inside
// one of its chunks. Once Allocate returns a ChunkRef, the bytes at that
// range never move and are never reused — the arena only ever grows.
// This gives every other component in the core (streams, delta/version
// storage, the MPH base table's key/value arrays) a stable address it
// can hold indefinitely without pinning a whole allocator.
//
// # Chunk classes
//
// Chunk size is fixed per Arena instance, chosen from Tiny/Small/Medium/Large.
// Documents needing different activity profiles use arenas of
// different classes; an allocation wider than the class returns
// ErrValueTooLarge and the caller is expected to retry against a larger
// class.
//
// # Concurrency
//
// A single atomic add on the current chunk's used-bytes counter claims a
// byte range. Every Allocate and Read also takes the arena's mutex
// briefly to look up the target chunk in the chunk list. The rare
// "current chunk is full, seal it and append a new one" path holds that
// same mutex while it allocates the new chunk, so Allocate and Read
// calls that arrive meanwhile wait for it to finish.
//
// # Lifecycle
//
// Chunk states (Active/Sealed/Persisted/Archived) are advisory only:
// this package implements no reclamation, compaction, or durability —
// a persistence layer built on top would read ChunkState to decide
// what is safe to flush.
package arena
