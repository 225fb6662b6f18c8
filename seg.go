// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// defaultSegSize is the slot count per segment used by the builder.
const defaultSegSize = 32

// Slot publication states. Slots start at slotEmpty (zero value).
const (
	slotEmpty = 0
	slotFull  = 1
)

// Seg is an unbounded lock-free segmented queue backend.
//
// Storage is a singly linked list of fixed-size segments. Producers claim
// slots by Fetch-And-Add on the segment's claim index and publish the
// element with a release store on the slot's state; a claim index past the
// segment links and advances to a fresh segment. Consumers claim published
// slots by CAS on the segment's dequeue index, bounded by the producers'
// claim index, so a claimed slot is owned by exactly one consumer.
//
// A consumer that claims a slot whose producer has not yet published spins
// briefly; the window is the copy of one element. Segments drain in link
// order, giving FIFO order under a single consumer and FIFO-leaning order
// under many.
//
// Enqueue never fails. Dequeue returns ErrWouldBlock only when no
// published element was claimable at the instant of the call.
//
// Seg is safe for any number of concurrent producers and consumers.
type Seg[T any] struct {
	_    pad
	head atomic.Pointer[segment[T]] // Consumer segment
	_    padPtr
	tail atomic.Pointer[segment[T]] // Producer segment
	_    padPtr
	size uint64 // Slots per segment (power of 2)
}

type segment[T any] struct {
	_     pad
	enq   atomix.Uint64 // Producer claim index (FAA; may exceed size)
	_     padShort
	deq   atomix.Uint64 // Consumer claim index (CAS)
	_     padShort
	next  atomic.Pointer[segment[T]]
	_     padPtr
	slots []segSlot[T]
}

type segSlot[T any] struct {
	state atomix.Uint64 // slotEmpty until the element is published
	data  T
	_     padShort // Pad to cache line
}

// NewSeg creates a new lock-free segmented queue backend.
// Segment size rounds up to the next power of 2.
//
// Panics if segSize < 2.
func NewSeg[T any](segSize int) *Seg[T] {
	if segSize < 2 {
		panic("dynq: segment size must be >= 2")
	}

	s := &Seg[T]{size: uint64(roundToPow2(segSize))}
	first := newSegment[T](s.size)
	s.head.Store(first)
	s.tail.Store(first)
	return s
}

func newSegment[T any](size uint64) *segment[T] {
	return &segment[T]{slots: make([]segSlot[T], size)}
}

// Enqueue adds an element to the queue. Always returns nil.
func (s *Seg[T]) Enqueue(elem *T) error {
	sw := spin.Wait{}
	for {
		seg := s.tail.Load()
		idx := seg.enq.AddAcqRel(1) - 1
		if idx < s.size {
			slot := &seg.slots[idx]
			slot.data = *elem
			slot.state.StoreRelease(slotFull)
			return nil
		}

		// Segment exhausted: install or follow the successor, then retry.
		next := seg.next.Load()
		if next == nil {
			fresh := newSegment[T](s.size)
			if seg.next.CompareAndSwap(nil, fresh) {
				next = fresh
			} else {
				next = seg.next.Load()
			}
		}
		// Tail only moves forward; a stale CAS loses harmlessly.
		s.tail.CompareAndSwap(seg, next)
		sw.Once()
	}
}

// Dequeue removes and returns an element from the queue.
// Returns (zero-value, ErrWouldBlock) if no element is claimable.
func (s *Seg[T]) Dequeue() (T, error) {
	var zero T
	for {
		seg := s.head.Load()
		for {
			d := seg.deq.LoadAcquire()
			e := seg.enq.LoadAcquire()
			if e > s.size {
				e = s.size
			}
			if d >= e {
				break // Nothing claimable in this segment right now
			}
			if !seg.deq.CompareAndSwapAcqRel(d, d+1) {
				continue
			}

			slot := &seg.slots[d]
			sw := spin.Wait{}
			for slot.state.LoadAcquire() == slotEmpty {
				sw.Once() // Producer is mid-publish
			}
			elem := slot.data
			slot.data = zero
			return elem, nil
		}

		// A successor exists only after all slots here were claimed by
		// producers; advance once all were claimed by consumers too.
		if seg.deq.LoadAcquire() >= s.size {
			if next := seg.next.Load(); next != nil {
				s.head.CompareAndSwap(seg, next)
				continue
			}
		}
		return zero, ErrWouldBlock
	}
}
