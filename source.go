// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import "code.hybscloud.com/iox"

// Source is one worker's pull loop over a queue.
//
// Each Source is driven by a single goroutine: Next and Exhausted must not
// be called concurrently. Split is safe from any goroutine and is how
// additional workers join a run. All sources of a queue share the same
// pending set and completion accounting; none owns a partition.
//
// Example:
//
//	src := q.Source()
//	for {
//	    h, elem, ok := src.Next()
//	    if !ok {
//	        break // Run complete
//	    }
//	    process(h, elem)
//	    h.Release()
//	}
type Source[T any] struct {
	q    *Queue[T]
	done bool // Latched once completion is observed
}

// Next claims the next element of the run.
//
// On success it returns the element together with the [Handle] that the
// processing step uses to enqueue follow-up elements; the caller must
// Release the handle when the step is done. When the pending set is
// momentarily empty but claims are still in flight, Next waits with
// adaptive backoff, since an in-flight step may grow the run. It returns
// ok=false only after observing the pending set empty with zero claims in
// flight and confirming with a final pop that nothing was pushed in
// between. That observation is terminal: every later call returns false
// immediately.
func (s *Source[T]) Next() (Handle[T], T, bool) {
	var zero T
	if s.done {
		return Handle[T]{}, zero, false
	}

	backoff := iox.Backoff{}
	for {
		if h, elem, ok := s.claim(); ok {
			return h, elem, true
		}
		if s.q.inflight.Load() == 0 {
			// Empty with nothing in flight. The zero observation orders
			// this goroutine after every released claim, so a confirming
			// pop now sees every element pushed by finished steps.
			if h, elem, ok := s.claim(); ok {
				return h, elem, true
			}
			s.done = true
			return Handle[T]{}, zero, false
		}
		backoff.Wait()
	}
}

// claim pops one element and begins its in-flight accounting.
func (s *Source[T]) claim() (Handle[T], T, bool) {
	elem, err := s.q.backend.Dequeue()
	if err != nil {
		if !IsWouldBlock(err) {
			panic("dynq: backend dequeue failed: " + err.Error())
		}
		var zero T
		return Handle[T]{}, zero, false
	}
	s.q.inflight.AddAcqRel(1)
	s.q.pulled.Add(1)
	return Handle[T]{q: s.q, tk: &ticket{}}, elem, true
}

// Split creates another source over the same run.
//
// The new source shares the pending set; elements are never partitioned
// between sources. Split returns nil when the run has nothing pending and
// nothing in flight, since a new pull loop could only observe completion.
// An in-flight claim is enough to split on: the claim may grow the run.
// Queues from [Wrap] always grant, because the counters cannot see
// elements pre-loaded in the backend.
//
// Split is safe to call from any goroutine, including while this source's
// owner is inside Next.
func (s *Source[T]) Split() *Source[T] {
	if !s.q.wrapped && s.q.Len() == 0 && s.q.inflight.Load() == 0 {
		return nil
	}
	s.q.splits.Add(1)
	return &Source[T]{q: s.q}
}

// Exhausted reports whether this source has observed run completion.
// Owner goroutine only, like Next.
func (s *Source[T]) Exhausted() bool {
	return s.done
}
