// Package pipeline is the delta application pipeline: the path from a
// submitted delta to an applied (or rejected/failed) document version.
//
// # Per-document FIFO
//
// Every document gets its own docQueue: a container/list guarded by a
// mutex. SubmitDelta always pushes to the target document's queue
// before anything else happens, so two deltas submitted for the same
// document in a given order are guaranteed to apply in that order —
// mandatory for correct version progression.
//
// # Work-stealing at document granularity, via channels
//
// Idle workers need to pick up whatever document has ready work next,
// without two workers ever draining the same document at once and
// without a fixed worker-to-document assignment. This package gets
// that with a single buffered Go channel standing in for a
// work-stealing deque: every worker blocks on a receive from the same
// channel, and whichever worker is free next receives the next ready
// document. Idle workers never sit still while ready documents wait,
// and a document is never handed to two workers at once, with no
// hand-rolled stealing logic; see DESIGN.md for the libraries
// considered for this role.
//
// # Idle/active transition
//
// A document is enqueued onto the injector exactly once per
// idle→active transition: SubmitDelta flips docQueue.active from false
// to true (under the queue's own mutex) only when it was previously
// idle, and a worker's drain loop flips it back to false only once the
// queue is observed empty, under the same mutex. Because both
// transitions happen under the same per-document lock, a submission
// racing with a worker finishing a drain can never be lost: either it
// lands before the worker observes the queue empty (drain keeps
// going) or after (drain sets active=false, then the submission's own
// CAS-like check re-enqueues the document).
//
// # Delta status tracking
//
// SubmitDelta creates a placeholder DeltaHeader in DeltaPending state
// immediately (so GetDeltaStatus never reports "unknown" for a delta
// that was accepted), then swaps in the authoritative header the
// document itself produces once the delta is actually processed.
package pipeline
