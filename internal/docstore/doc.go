// Package docstore is the per-document runtime layer: delta and
// version streams built on stream.Stream, backed by an arena.Arena,
// with a Document's current state exposed through a single
// atomic.Pointer[DocumentVersion].
//
// # Write path
//
// AppendDelta encodes a wire.Delta, allocates and writes its bytes in
// the arena, and appends a DeltaRecord to the delta stream — this is
// purely a durability/ordering step and never touches the current
// version. ApplyDelta is the full validate→apply cycle: it appends the
// delta, walks it through DeltaPending → DeltaValidating →
// DeltaApplying → (DeltaApplied | DeltaRejected | DeltaFailed), and on
// success produces a new DocumentVersion which is installed with a
// single atomic store. A reader's Get never observes a version that is
// only half-written, because the version is fully built (including its
// arena-resident payload) before the pointer swap.
//
// # Compression
//
// A version's payload is zstd-compressed in the arena once it crosses
// compressThreshold; CurrentPayload decompresses transparently, so
// callers never need to know whether a given version happened to be
// compressed.
//
// # Op interpretation
//
// This package only knows one concrete operation: wire.OpSet replaces
// a document's payload outright. Every other op type in the wire
// enum is persisted and marked Applied without changing the current
// payload. Interpreting the other op types (field/child mutation,
// sequence ops, schema ops) is a graph/CRDT concern living above the
// storage substrate this module implements.
package docstore
