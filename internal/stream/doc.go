// Package stream implements the segmented, append-only stream that
// every other stateful component in the core (delta streams, version
// streams, per-document queues' backing log, user document streams) is
// built on.
//
// # Structure
//
// A Stream[T] is a singly-linked list of fixed-capacity pages. Each page
// is a plain Go slice plus an atomic length. Appending claims a slot via
// an atomic increment of the page's length counter; if the claimed slot
// falls outside the page's capacity, the appender ensures the next page
// exists (installing it via the look-ahead mechanism below, or lazily if
// look-ahead hasn't fired yet) and retries against it.
//
// # Look-ahead linking
//
// To avoid writers stalling on page allocation under contention, a
// Stream eagerly allocates its next page as soon as the write at index
// ⌊capacity/2⌋ of the current page completes. By the time the page
// actually fills, the next page is almost always already linked.
//
// # Stable indices
//
// Append returns an Index[T]: a {page, slot} pair. Resolving an Index is
// an O(1) pointer dereference plus array index — always valid, because
// pages are immutable once written and a Stream never frees a page
// while it is alive (Go's garbage collector keeps a page reachable for
// as long as any Index referencing it is reachable, even after the
// Stream itself is the only other holder).
//
// # Iteration
//
// A Cursor walks forward from any Index (or from Head()), following
// page.next links and tolerating a nil link as end-of-stream. Cursors
// are restartable and lock-free: iteration never blocks a concurrent
// appender, and an appender never blocks a concurrent cursor.
package stream
