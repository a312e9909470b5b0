// Package docstore implements the per-document delta/version streams
// and the Document runtime: every write lands in an immutable
// delta stream, and the pipeline folds applied deltas into a new
// immutable DocumentVersion snapshot swapped in with a single atomic
// store. See doc.go for the full design.
package docstore

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/econic-ai/massive-graph/internal/arena"
	"github.com/econic-ai/massive-graph/internal/id"
	"github.com/econic-ai/massive-graph/internal/stream"
	"github.com/econic-ai/massive-graph/internal/wire"
)

var (
	// ErrValidation is returned by ApplyDelta when a delta fails
	// validation, before it ever touches the document's current version.
	// Validation checks only that the delta targets this document; schema
	// version, payload shape and executor permissions are not checked.
	ErrValidation = errors.New("docstore: delta failed validation")

	// ErrApply is returned when a delta passed validation but applying
	// it to the current version failed; the document's current version
	// is left unchanged.
	ErrApply = errors.New("docstore: delta failed to apply")
)

// compressThreshold is the wire-payload size at or above which a
// DocumentVersion's snapshot is zstd-compressed before being written
// to the arena.
const compressThreshold = 4096

// DeltaStatus is the lifecycle state of one delta as it moves through
// the pipeline.
type DeltaStatus int32

const (
	DeltaPending DeltaStatus = iota
	DeltaValidating
	DeltaApplying
	DeltaApplied
	DeltaRejected
	DeltaFailed
)

func (s DeltaStatus) String() string {
	switch s {
	case DeltaPending:
		return "pending"
	case DeltaValidating:
		return "validating"
	case DeltaApplying:
		return "applying"
	case DeltaApplied:
		return "applied"
	case DeltaRejected:
		return "rejected"
	case DeltaFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DeltaHeader is the fixed-shape metadata record kept alongside every
// delta's arena-resident bytes. Status is the only field mutated after
// the header is created, always through SetStatus's atomic store.
type DeltaHeader struct {
	DeltaID      id.ID8
	TimestampNS  int64
	ExecutorID   id.ID16
	DataSize     uint32
	OpCount      uint16
	status       atomic.Int32
}

// NewDeltaHeader builds a header in DeltaPending state.
func NewDeltaHeader(deltaID id.ID8, executorID id.ID16, dataSize uint32, opCount uint16) *DeltaHeader {
	h := &DeltaHeader{
		DeltaID:     deltaID,
		TimestampNS: time.Now().UnixNano(),
		ExecutorID:  executorID,
		DataSize:    dataSize,
		OpCount:     opCount,
	}
	h.status.Store(int32(DeltaPending))
	return h
}

// Status loads the header's current lifecycle state.
func (h *DeltaHeader) Status() DeltaStatus { return DeltaStatus(h.status.Load()) }

// SetStatus atomically transitions the header to status.
func (h *DeltaHeader) SetStatus(status DeltaStatus) { h.status.Store(int32(status)) }

// DeltaRecord is one entry in a document's delta stream: the arena
// range holding the encoded wire.Delta bytes, plus its header.
type DeltaRecord struct {
	Ref    arena.ChunkRef
	Header *DeltaHeader
}

// DocumentVersion is an immutable snapshot of a document's applied
// state: a reference to the (possibly zstd-compressed) wire-encoded
// payload, plus DeltaSequence, the number of successfully applied
// deltas it reflects (rejected and failed deltas stay in the delta
// stream but are not counted).
type DocumentVersion struct {
	VersionID     uint64
	SchemaVersion uint16
	WireRef       arena.ChunkRef
	WireSize      uint32
	Compressed    bool
	DeltaSequence uint64
}

// Header is the immutable identity and classification of a document,
// written once at creation.
type Header struct {
	DocID        id.ID16
	DocType      uint8
	SchemaFamily uint32
	CreatedAtNS  int64
}

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Document is the runtime object for one document: its delta and
// version streams, and the atomically-swapped pointer to its current
// version. The writer (a single pipeline worker, by construction of
// the per-document FIFO) is the only goroutine that ever mutates
// currentVersion or the status of its own deltas; readers only ever
// load currentVersion.
type Document struct {
	Header Header

	arena *arena.Arena

	deltaStream   *stream.Stream[DeltaRecord]
	versionStream *stream.Stream[*DocumentVersion]

	currentVersion atomic.Pointer[DocumentVersion]
	nextVersionID  atomic.Uint64

	pendingCount    atomic.Int64
	isProcessing    atomic.Bool
	lastUpdatedNS   atomic.Int64

	// applyMu serializes ApplyDelta calls against this document. The
	// pipeline's per-document FIFO already guarantees a single worker
	// drains one document at a time, so this is a cheap defensive
	// backstop, not load-bearing concurrency control.
	applyMu sync.Mutex
}

// New creates a Document with an empty initial version (VersionID 0,
// zero-length payload) and empty delta/version streams backed by a.
func New(header Header, a *arena.Arena, streamPageCapacity int) *Document {
	d := &Document{
		Header:        header,
		arena:         a,
		deltaStream:   stream.New[DeltaRecord](streamPageCapacity),
		versionStream: stream.New[*DocumentVersion](streamPageCapacity),
	}
	initial := &DocumentVersion{VersionID: 0, SchemaVersion: 0}
	d.versionStream.Append(initial)
	d.currentVersion.Store(initial)
	d.lastUpdatedNS.Store(time.Now().UnixNano())
	return d
}

// CurrentVersion returns the document's current version snapshot. Safe
// for concurrent use; always returns a non-nil pointer.
func (d *Document) CurrentVersion() *DocumentVersion {
	return d.currentVersion.Load()
}

// CurrentPayload returns the decompressed wire bytes of the current
// version's snapshot.
func (d *Document) CurrentPayload() []byte {
	v := d.currentVersion.Load()
	if v.WireSize == 0 {
		return nil
	}
	raw := d.arena.Read(v.WireRef)
	if !v.Compressed {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out
	}
	decompressed, err := zstdDecoder.DecodeAll(raw, nil)
	if err != nil {
		log.Error().Err(err).Str("doc_id", d.Header.DocID.String()).Msg("docstore: corrupt compressed version")
		return nil
	}
	return decompressed
}

// PendingCount returns the number of deltas appended but not yet
// Applied/Rejected/Failed.
func (d *Document) PendingCount() int64 { return d.pendingCount.Load() }

// AppendDelta encodes delta, writes it into the arena, and appends a
// DeltaRecord (status Pending) to the document's delta stream.
// Enqueueing the document onto the pipeline's work queue is the
// caller's responsibility (docstore has no dependency on pipeline).
func (d *Document) AppendDelta(delta wire.Delta, deltaID id.ID8, executorID id.ID16) (stream.Index[DeltaRecord], *DeltaHeader, error) {
	encoded, err := wire.Encode(delta)
	if err != nil {
		return stream.Index[DeltaRecord]{}, nil, err
	}
	ref, err := d.arena.Allocate(len(encoded))
	if err != nil {
		return stream.Index[DeltaRecord]{}, nil, err
	}
	d.arena.Write(ref, encoded)

	header := NewDeltaHeader(deltaID, executorID, uint32(len(encoded)), uint16(len(delta.Params)))
	idx := d.deltaStream.Append(DeltaRecord{Ref: ref, Header: header})
	d.pendingCount.Add(1)
	d.lastUpdatedNS.Store(time.Now().UnixNano())
	return idx, header, nil
}

// ApplyDelta runs one delta through validate→apply against the
// document's current version, producing a new DocumentVersion on
// success. The only transformation this storage layer defines
// concretely is wire.OpSet (whole-payload replace); every other op
// type is persisted and marked Applied without altering the current
// payload — interpreting CRDT/graph op semantics belongs to a layer
// above the storage substrate, which is out of this module's scope.
func (d *Document) ApplyDelta(delta wire.Delta, deltaID id.ID8, executorID id.ID16) (*DeltaHeader, error) {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()

	_, header, err := d.AppendDelta(delta, deltaID, executorID)
	if err != nil {
		return nil, err
	}

	header.SetStatus(DeltaValidating)
	if err := validate(delta, d.Header); err != nil {
		header.SetStatus(DeltaRejected)
		d.pendingCount.Add(-1)
		return header, errors.Join(ErrValidation, err)
	}

	header.SetStatus(DeltaApplying)
	newVersion, err := d.nextVersion(delta)
	if err != nil {
		header.SetStatus(DeltaFailed)
		d.pendingCount.Add(-1)
		return header, errors.Join(ErrApply, err)
	}

	d.versionStream.Append(newVersion)
	d.currentVersion.Store(newVersion)
	header.SetStatus(DeltaApplied)
	d.pendingCount.Add(-1)
	d.lastUpdatedNS.Store(time.Now().UnixNano())
	return header, nil
}

func validate(delta wire.Delta, h Header) error {
	if delta.DocID != h.DocID {
		return errors.New("docstore: delta targets a different document")
	}
	return nil
}

// nextVersion builds the DocumentVersion that results from applying
// delta on top of the document's current payload.
func (d *Document) nextVersion(delta wire.Delta) (*DocumentVersion, error) {
	cur := d.currentVersion.Load()

	var payload []byte
	if delta.Op == wire.OpSet {
		payload = delta.Payload
	} else {
		payload = d.CurrentPayload()
	}

	compressed := false
	toStore := payload
	if len(payload) >= compressThreshold {
		toStore = zstdEncoder.EncodeAll(payload, nil)
		compressed = true
	}

	var ref arena.ChunkRef
	if len(toStore) > 0 {
		var err error
		ref, err = d.arena.Allocate(len(toStore))
		if err != nil {
			return nil, err
		}
		d.arena.Write(ref, toStore)
	}

	versionID := d.nextVersionID.Add(1)
	return &DocumentVersion{
		VersionID:     versionID,
		SchemaVersion: delta.SchemaVersion,
		WireRef:       ref,
		WireSize:      uint32(len(toStore)),
		Compressed:    compressed,
		DeltaSequence: cur.DeltaSequence + 1,
	}, nil
}
