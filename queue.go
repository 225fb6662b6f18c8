// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import (
	"code.hybscloud.com/atomix"
)

// Queue is a dynamically growable work queue for one traversal run.
//
// A Queue holds the pending elements in a pluggable [Backend] together with
// the run accounting that lets the traversal grow while it is being drained:
// a task that processes an element may enqueue further elements into the
// same run through its [Handle], and the run completes only when the
// pending set is empty and no task is still in flight.
//
// Construct with [Build], [From], [FromSeq] or [Wrap], seed it, then drain
// it with [Queue.ForEach], [Collect], [Reduce], [Queue.All], or manually
// through [Queue.Source].
//
// Example:
//
//	q := dynq.From(dynq.New(), pages)
//	err := q.ForEach(ctx, func(ctx context.Context, h dynq.Handle[Page], p *Page) error {
//	    for link := range p.Links() {
//	        h.Enqueue(&link)
//	    }
//	    return index(ctx, p)
//	})
type Queue[T any] struct {
	_        pad
	inflight atomix.Int64 // Claimed elements not yet released
	_        pad
	pushed   atomix.Int64 // Total enqueues (seeds + handle enqueues)
	pulled   atomix.Int64 // Total claims handed to tasks
	released atomix.Int64 // Total claims discharged
	splits   atomix.Int64 // Total successful source splits
	_        pad
	backend  Backend[T]
	workers  int
	wrapped  bool // Backend may hold elements the counters never saw
}

// Enqueue adds an element to the pending set.
//
// Enqueue is the seeding entry point: call it before starting a run, or
// between runs. Inside a task use [Handle.Enqueue] instead, which
// participates in the run's completion accounting.
//
// The element is copied; the original can be modified after return.
// Returns ErrWouldBlock only when a bounded backend from [Wrap] is full.
func (q *Queue[T]) Enqueue(elem *T) error {
	if err := q.backend.Enqueue(elem); err != nil {
		return err
	}
	q.pushed.Add(1)
	return nil
}

// Seed adds every element of items to the pending set.
// Stops at the first backend rejection and returns its error.
func (q *Queue[T]) Seed(items ...T) error {
	for i := range items {
		if err := q.Enqueue(&items[i]); err != nil {
			return err
		}
	}
	return nil
}

// Dequeue removes and returns a pending element, bypassing run accounting.
//
// Dequeue is meant for inspecting leftovers after a run stopped early
// (context cancellation, first error). Using it while workers are draining
// the same queue steals elements from them without marking anything in
// flight, so completion may be declared while the stolen element is still
// being handled by the caller.
//
// Returns (zero-value, ErrWouldBlock) when nothing is pending.
func (q *Queue[T]) Dequeue() (T, error) {
	elem, err := q.backend.Dequeue()
	if err == nil {
		q.pulled.Add(1)
	}
	return elem, err
}

// Len returns the advisory number of pending elements.
//
// The count is derived from the push/pull counters, not from the backend,
// and can lag behind concurrent operations. It never replaces the source
// completion protocol; use it for sizing and reporting only.
func (q *Queue[T]) Len() int {
	n := q.pushed.Load() - q.pulled.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Source returns a new pull loop over the queue for one worker.
// Additional workers obtain theirs with [Source.Split].
func (q *Queue[T]) Source() *Source[T] {
	return &Source[T]{q: q}
}

// push is the infallible enqueue used by seeding adapters and handles.
// A backend rejection here cannot be handled by the traversal, so it is
// treated as fatal.
func (q *Queue[T]) push(elem *T) {
	if err := q.backend.Enqueue(elem); err != nil {
		panic("dynq: backend rejected enqueue: " + err.Error())
	}
	q.pushed.Add(1)
}

// Stats is a point-in-time snapshot of a queue's run counters.
//
// Counters are advisory: they are updated with independent atomic
// operations, so a snapshot taken during a run may be internally skewed
// by in-progress operations. After a completed run over queue-seeded
// elements, Pushed == Pulled == Released and InFlight == 0. Elements
// pre-loaded in a [Wrap]ped backend count toward Pulled and Released
// but not Pushed.
type Stats struct {
	Pushed   int64 // Elements enqueued (seeds + handle enqueues)
	Pulled   int64 // Elements claimed by sources
	Released int64 // Claims discharged
	InFlight int64 // Claimed but not yet discharged
	Splits   int64 // Successful source splits
}

// Stats returns a snapshot of the queue's run counters.
func (q *Queue[T]) Stats() Stats {
	return Stats{
		Pushed:   q.pushed.Load(),
		Pulled:   q.pulled.Load(),
		Released: q.released.Load(),
		InFlight: q.inflight.Load(),
		Splits:   q.splits.Load(),
	}
}
