// Package pipeline implements the delta application pipeline: a
// per-document FIFO with work-stealing at document granularity, so
// deltas within one document always apply in submission order while
// independent documents apply in parallel across workers. See doc.go
// for the full design, including why this is built on Go channels
// rather than a crossbeam-style deque.
package pipeline

import (
	"container/list"
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/econic-ai/massive-graph/internal/docstore"
	"github.com/econic-ai/massive-graph/internal/id"
	"github.com/econic-ai/massive-graph/internal/store"
	"github.com/econic-ai/massive-graph/internal/wire"
)

// ErrShuttingDown names the shutting-down condition. SubmitDelta does
// not check for shutdown and does not return it: a delta submitted after
// Shutdown is queued but never applied, and SubmitDelta blocks once the
// injector buffer is full.
var ErrShuttingDown = errors.New("pipeline: shutting down")

// ErrDeltaUnknown is returned by GetDeltaStatus for a delta ID the
// pipeline has never seen. Status entries are never evicted.
var ErrDeltaUnknown = errors.New("pipeline: unknown delta id")

// Submission is one delta queued for application, addressed by user so
// the worker can route it through store.Store.ApplyDelta.
type Submission struct {
	UserID     id.ID16
	Delta      wire.Delta
	DeltaID    id.ID8
	ExecutorID id.ID16
}

// docQueue is one document's single-consumer logical queue: a FIFO
// list guarded by its own mutex, plus an active flag recording whether
// the document is currently enqueued on the injector (or being
// drained by a worker) so a submission never enqueues the same
// document twice.
type docQueue struct {
	docID  id.ID16
	mu     sync.Mutex
	items  list.List
	active bool
}

// Pipeline owns the per-document queues, the shared injector channel
// workers pull from, and the delta status table SubmitDelta/
// GetDeltaStatus expose to callers.
type Pipeline struct {
	st      *store.Store
	workers int

	queuesMu sync.Mutex
	queues   map[id.ID16]*docQueue

	injector chan *docQueue

	statuses sync.Map // id.ID8 -> *docstore.DeltaHeader

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New creates a Pipeline fronting st with the given worker count and
// injector buffer size (the number of documents that may be queued for
// a worker before SubmitDelta's enqueue blocks). workers <= 0 selects
// 1; injectorBuffer <= 0 selects 256.
func New(st *store.Store, workers, injectorBuffer int) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	if injectorBuffer <= 0 {
		injectorBuffer = 256
	}
	return &Pipeline{
		st:       st,
		workers:  workers,
		queues:   make(map[id.ID16]*docQueue),
		injector: make(chan *docQueue, injectorBuffer),
	}
}

// Start launches the worker pool. It is safe to call Start once per
// Pipeline; calling it twice panics, since a second call would leak
// the first worker set with no way to stop it.
func (p *Pipeline) Start(ctx context.Context) {
	if p.cancel != nil {
		panic("pipeline: Start called twice")
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.workerLoop(ctx, i)
	}
}

// Shutdown signals every worker to stop after its current document
// drains, then waits for them to exit. Deltas still queued for a
// document no worker picked up stay Pending; recovering them is a
// durability concern outside this package.
func (p *Pipeline) Shutdown() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
}

// SubmitDelta enqueues sub on its target document's FIFO, waking a
// worker if the document was idle. It never blocks on delta
// application itself — only (rarely) on the injector channel if every
// worker is already behind on document backlog.
func (p *Pipeline) SubmitDelta(sub Submission) error {
	header := docstore.NewDeltaHeader(sub.DeltaID, sub.ExecutorID, uint32(len(sub.Delta.Payload)), uint16(len(sub.Delta.Params)))
	p.statuses.Store(sub.DeltaID, header)

	q := p.queueFor(sub.Delta.DocID)

	q.mu.Lock()
	q.items.PushBack(sub)
	needsEnqueue := !q.active
	if needsEnqueue {
		q.active = true
	}
	q.mu.Unlock()

	if needsEnqueue {
		p.injector <- q
	}
	return nil
}

// GetDeltaStatus returns the current lifecycle status of deltaID.
func (p *Pipeline) GetDeltaStatus(deltaID id.ID8) (docstore.DeltaStatus, error) {
	v, ok := p.statuses.Load(deltaID)
	if !ok {
		return 0, ErrDeltaUnknown
	}
	return v.(*docstore.DeltaHeader).Status(), nil
}

func (p *Pipeline) queueFor(docID id.ID16) *docQueue {
	p.queuesMu.Lock()
	defer p.queuesMu.Unlock()
	q, ok := p.queues[docID]
	if !ok {
		q = &docQueue{docID: docID}
		p.queues[docID] = q
	}
	return q
}

// workerLoop pulls documents off the shared injector channel — every
// worker reading from the same channel is what makes this
// "work-stealing at document granularity": whichever worker is free
// next receives the next ready document, with no document ever handed
// to two workers at once.
func (p *Pipeline) workerLoop(ctx context.Context, workerID int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-p.injector:
			p.drain(q)
		}
	}
}

// drain fully empties q's FIFO, applying each submission in order, then
// marks q idle. A submission that races in after the queue looked
// empty re-flips active and re-enqueues q onto the injector from
// SubmitDelta — see doc.go for why this can't miss a wakeup.
func (p *Pipeline) drain(q *docQueue) {
	for {
		q.mu.Lock()
		elem := q.items.Front()
		if elem == nil {
			q.active = false
			q.mu.Unlock()
			return
		}
		q.items.Remove(elem)
		q.mu.Unlock()

		sub := elem.Value.(Submission)
		p.apply(sub)
	}
}

func (p *Pipeline) apply(sub Submission) {
	header, err := p.st.ApplyDelta(sub.UserID, sub.Delta, sub.DeltaID, sub.ExecutorID)
	switch {
	case header != nil:
		p.statuses.Store(sub.DeltaID, header)
	case err != nil:
		// ApplyDelta failed before the document could even construct
		// its own DeltaHeader (e.g. unknown user/document under
		// strict mode): mark the placeholder header SubmitDelta
		// created as Rejected so GetDeltaStatus doesn't report
		// "pending" forever.
		if v, ok := p.statuses.Load(sub.DeltaID); ok {
			v.(*docstore.DeltaHeader).SetStatus(docstore.DeltaRejected)
		}
	}
	if err != nil {
		log.Debug().
			Str("doc_id", sub.Delta.DocID.String()).
			Str("delta_id", sub.DeltaID.String()).
			Err(err).
			Msg("pipeline: delta did not apply")
		return
	}
	log.Debug().
		Str("doc_id", sub.Delta.DocID.String()).
		Str("delta_id", sub.DeltaID.String()).
		Msg("pipeline: delta applied")
}
