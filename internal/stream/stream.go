// Package stream implements an append-only segmented stream:
// singly-linked, fixed-capacity pages that hand out stable StreamIndex
// cursors. See doc.go for the full design.
package stream

import (
	"runtime"
	"sync/atomic"
)

// DefaultPageCapacity is the default number of elements per page.
const DefaultPageCapacity = 512

// page is a fixed-capacity array of T plus an atomic length and an
// atomic next pointer. Pages are never moved or freed while any
// StreamIndex may point into them — they are owned exclusively by the
// Stream that created them and live for as long as it does, so a plain
// Go pointer (kept alive by the GC) satisfies the "pages are never
// freed before stream drop" invariant without unsafe code.
type page[T any] struct {
	slots    []T
	len      atomic.Uint32
	next     atomic.Pointer[page[T]]
	nextInit atomic.Bool // guards eager look-ahead allocation (see Append)
}

func newPage[T any](capacity int) *page[T] {
	return &page[T]{slots: make([]T, capacity)}
}

// Index is a stable cursor into a Stream: resolving it is an O(1)
// pointer chase plus array index, always valid because pages are
// immutable post-write and never freed before the stream itself.
type Index[T any] struct {
	page *page[T]
	idx  uint32
}

// Stream is a lock-free, append-only, singly-linked sequence of pages.
// Writers claim a slot in the current tail page with an atomic add on
// its length; once a page fills, a
// new page is linked in. A look-ahead invariant eagerly allocates the
// next page once a page is half-full, so appenders never stall waiting
// on page-allocation under contention.
type Stream[T any] struct {
	capacity int
	head     *page[T]
	tail     atomic.Pointer[page[T]]
	length   atomic.Uint64 // total elements ever appended
}

// New creates an empty Stream with the given page capacity. A capacity
// of 0 selects DefaultPageCapacity.
func New[T any](capacity int) *Stream[T] {
	if capacity <= 0 {
		capacity = DefaultPageCapacity
	}
	p := newPage[T](capacity)
	s := &Stream[T]{capacity: capacity, head: p}
	s.tail.Store(p)
	return s
}

// Append adds v to the stream and returns a stable Index for it.
func (s *Stream[T]) Append(v T) Index[T] {
	for {
		tail := s.tail.Load()
		slot := tail.len.Add(1) - 1
		if int(slot) < s.capacity {
			tail.slots[slot] = v
			s.length.Add(1)
			s.maybeLookAhead(tail, slot)
			return Index[T]{page: tail, idx: slot}
		}
		// This page is full (slot beyond capacity reserved by the
		// over-subscribed Add above); the next page exists already (or
		// is being allocated right now) thanks to the look-ahead below,
		// so just wait for it and advance onto it.
		s.advanceToNext(tail)
	}
}

// maybeLookAhead eagerly allocates (but does not yet link in as tail)
// the next page once index ⌊P/2⌋ of the current page has been written,
// so writers never stall under contention waiting for a fresh page
// once the current one fills. The tail itself only moves once the
// current page is actually full, so every slot of a page is used
// before appenders move on to the next one.
func (s *Stream[T]) maybeLookAhead(p *page[T], writtenIdx uint32) {
	if int(writtenIdx) != s.capacity/2 {
		return
	}
	s.allocateNext(p)
}

// allocateNext populates p.next with a freshly allocated page, CASing
// it in if another goroutine hasn't already done so.
func (s *Stream[T]) allocateNext(p *page[T]) {
	if p.nextInit.CompareAndSwap(false, true) {
		p.next.Store(newPage[T](s.capacity))
	}
}

// advanceToNext moves the stream's tail pointer from p to p.next,
// allocating p.next first if the look-ahead at the half-full mark
// hasn't run yet (the writer of the half-full slot has not finished).
func (s *Stream[T]) advanceToNext(p *page[T]) {
	s.allocateNext(p)
	for p.next.Load() == nil {
		// busy-wait: allocateNext's store is a handful of instructions.
		runtime.Gosched()
	}
	s.advanceTail(p.next.Load())
}

// advanceTail moves the stream's tail pointer forward to np, tolerating
// concurrent callers racing to do the same thing (only the furthest
// advance should ever "win", but any successful CAS is sufficient since
// Append always re-reads s.tail).
func (s *Stream[T]) advanceTail(np *page[T]) {
	for {
		cur := s.tail.Load()
		if cur == np {
			return
		}
		if s.tail.CompareAndSwap(cur, np) {
			return
		}
	}
}

// Resolve returns the value named by idx.
func (s *Stream[T]) Resolve(idx Index[T]) T {
	return idx.page.slots[idx.idx]
}

// Len returns the total number of elements appended to the stream.
func (s *Stream[T]) Len() int {
	return int(s.length.Load())
}

// Cursor is a forward-only, restartable iterator over a Stream,
// starting from an arbitrary Index (or the stream's Head).
type Cursor[T any] struct {
	page *page[T]
	idx  uint32
}

// Head returns a cursor positioned at the first element of the stream.
func (s *Stream[T]) Head() Cursor[T] {
	return Cursor[T]{page: s.head, idx: 0}
}

// From returns a cursor positioned at idx.
func (s *Stream[T]) From(idx Index[T]) Cursor[T] {
	return Cursor[T]{page: idx.page, idx: idx.idx}
}

// Next returns the value at the cursor and advances it, tolerating a
// nil next page by treating it as end-of-stream. ok is false once the
// stream is exhausted as of this call.
func (c *Cursor[T]) Next() (v T, idx Index[T], ok bool) {
	for {
		if c.page == nil {
			return v, idx, false
		}
		if c.idx < c.page.len.Load() && int(c.idx) < len(c.page.slots) {
			v = c.page.slots[c.idx]
			idx = Index[T]{page: c.page, idx: c.idx}
			c.idx++
			return v, idx, true
		}
		next := c.page.next.Load()
		if next == nil {
			return v, idx, false
		}
		c.page = next
		c.idx = 0
	}
}
