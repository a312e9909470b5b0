// Package userspace implements one user's document set: an
// OptimisedIndex[id.ID16, *docstore.Document] for O(1) lookup plus a
// stream of UserDocRef recording creation/removal history.
//
// Space mirrors the surface Store needs —
// CreateDocument/GetDocument/DocumentExists/RemoveDocument/ApplyDelta —
// so Store can fan a user-scoped call straight through without knowing
// anything about a document's internals.
//
// Every successful CreateDocument and RemoveDocument appends to docRefs
// (the index has no memory of past membership once Publish folds a
// tombstone away, but the stream always does); a call that fails with
// ErrDocumentExists or ErrDocumentNotFound appends nothing. This is
// what lets BuildNextUserDocsInto reconstruct a user's
// full document history, including documents later removed, by
// replaying the stream rather than querying current index state.
package userspace
