// Package userspace implements Space: one user's document index plus
// their document stream, the per-user unit the Store fans out to. See
// doc.go for the full design.
package userspace

import (
	"errors"
	"sync"

	"github.com/econic-ai/massive-graph/internal/arena"
	"github.com/econic-ai/massive-graph/internal/docstore"
	"github.com/econic-ai/massive-graph/internal/id"
	"github.com/econic-ai/massive-graph/internal/mph"
	"github.com/econic-ai/massive-graph/internal/optindex"
	"github.com/econic-ai/massive-graph/internal/stream"
	"github.com/econic-ai/massive-graph/internal/wire"
)

// ErrDocumentExists is returned by CreateDocument when doc_id is
// already present in the space's index.
var ErrDocumentExists = errors.New("userspace: document already exists")

// ErrDocumentNotFound is returned by operations addressing a doc_id
// that isn't (or is no longer) present in the space's index.
var ErrDocumentNotFound = errors.New("userspace: document not found")

func docIDBytes(k id.ID16) []byte {
	b := make([]byte, 16)
	copy(b, k[:])
	return b
}

// UserDocRef is the entry appended to a Space's document stream: a
// stable record of document ownership, independent of the index's
// current membership (a removed document's ref still appears in the
// stream's history).
type UserDocRef struct {
	DocID   id.ID16
	Removed bool
}

// Space owns one user's entire document set: an OptimisedIndex keyed
// by document ID, an append-only stream recording every
// create/remove, and a resumable cursor over that stream for
// iteration/reconstruction callers.
type Space struct {
	UserID id.ID16

	arena   *arena.Arena
	docs    *optindex.Index[id.ID16, *docstore.Document]
	docRefs *stream.Stream[UserDocRef]

	// cursorMu guards cur, the resumable scan position for
	// BuildNextUserDocsInto. The stream package addresses positions by
	// opaque Index/Cursor value rather than integer offset, so the
	// resumable position here is the cursor itself rather than a raw
	// atomic counter; a mutex (not an atomic) is what makes advancing
	// it safe for callers that might race.
	cursorMu sync.Mutex
	cur      stream.Cursor[UserDocRef]
	curInit  bool

	streamPageCapacity int
}

// New creates an empty Space for userID, allocating documents out of
// a (a typically shares one arena per chunk class across a Store).
func New(userID id.ID16, a *arena.Arena, streamPageCapacity int) *Space {
	if streamPageCapacity <= 0 {
		streamPageCapacity = stream.DefaultPageCapacity
	}
	return &Space{
		UserID:             userID,
		arena:              a,
		docs:               optindex.New[id.ID16, *docstore.Document](16, docIDBytes, mph.DefaultSeed),
		docRefs:            stream.New[UserDocRef](streamPageCapacity),
		streamPageCapacity: streamPageCapacity,
	}
}

// CreateDocument creates a new, empty document under docID. Fails with
// ErrDocumentExists if docID is already present.
func (s *Space) CreateDocument(docID id.ID16, docType uint8, schemaFamily uint32, createdAtNS int64) (*docstore.Document, error) {
	if s.docs.ContainsKey(docID) {
		return nil, ErrDocumentExists
	}
	header := docstore.Header{DocID: docID, DocType: docType, SchemaFamily: schemaFamily, CreatedAtNS: createdAtNS}
	d := docstore.New(header, s.arena, s.streamPageCapacity)
	s.docs.Upsert(docID, d)
	s.docRefs.Append(UserDocRef{DocID: docID})
	return d, nil
}

// GetDocument returns the document for docID, or ErrDocumentNotFound.
func (s *Space) GetDocument(docID id.ID16) (*docstore.Document, error) {
	d, ok := s.docs.Get(docID)
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return d, nil
}

// DocumentExists reports whether docID currently resolves to a live
// document.
func (s *Space) DocumentExists(docID id.ID16) bool {
	return s.docs.ContainsKey(docID)
}

// RemoveDocument tombstones docID in the index and records its removal
// in the document stream. Idempotent-by-index: removing an
// already-removed or never-created docID returns ErrDocumentNotFound.
func (s *Space) RemoveDocument(docID id.ID16) error {
	if !s.docs.ContainsKey(docID) {
		return ErrDocumentNotFound
	}
	s.docs.Remove(docID)
	s.docRefs.Append(UserDocRef{DocID: docID, Removed: true})
	return nil
}

// ApplyDelta runs delta through its target document's validate/apply
// cycle. The target document is delta.DocID, which must already exist.
func (s *Space) ApplyDelta(delta wire.Delta, deltaID id.ID8, executorID id.ID16) (*docstore.DeltaHeader, error) {
	d, err := s.GetDocument(delta.DocID)
	if err != nil {
		return nil, err
	}
	return d.ApplyDelta(delta, deltaID, executorID)
}

// DocumentCount returns the number of live documents in the space.
func (s *Space) DocumentCount() int {
	return s.docs.Len()
}

// Publish folds the space's document index overlay into a fresh frozen
// base. Call sites schedule this off the hot path.
func (s *Space) Publish() error {
	return s.docs.Publish()
}

// BuildNextUserDocsInto advances the space's resumable cursor through
// its document stream, appending up to maxScan refs to out and
// returning the number appended. Repeated calls never re-yield a ref:
// the cursor only ever moves forward.
func (s *Space) BuildNextUserDocsInto(maxScan int, out *[]UserDocRef) int {
	s.cursorMu.Lock()
	defer s.cursorMu.Unlock()

	if !s.curInit {
		s.cur = s.docRefs.Head()
		s.curInit = true
	}

	scanned := 0
	for scanned < maxScan {
		v, _, ok := s.cur.Next()
		if !ok {
			break
		}
		*out = append(*out, v)
		scanned++
	}
	return scanned
}
