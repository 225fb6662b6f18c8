// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

// Backend is the storage contract for a queue's pending elements.
//
// Backend provides non-blocking Enqueue and Dequeue operations. Dequeue
// returns ErrWouldBlock when no element is available at the instant of the
// call; an unbounded backend never fails Enqueue, while bounded adapters
// may return ErrWouldBlock on a full buffer.
//
// The interface intentionally excludes length because accurate counts in
// lock-free algorithms require expensive cross-core synchronization.
// [Queue] tracks advisory counts in its run state instead.
//
// The method shape matches the producer/consumer contract of bounded
// hybscloud queues, so any queue with
//
//	Enqueue(elem *T) error
//	Dequeue() (T, error)
//
// plugs in directly through [Wrap]. The package ships two implementations:
// [Ring] (mutex-guarded, growable) and [Seg] (lock-free segmented).
//
// Example:
//
//	q := dynq.Build[int](dynq.New())
//
//	// Seed
//	val := 42
//	if err := q.Enqueue(&val); err != nil {
//	    // Bounded custom backend is full
//	}
//
//	// Drain leftovers after a run
//	elem, err := q.Dequeue()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Backend[T any] interface {
	Producer[T]
	Consumer[T]
}

// Producer is the interface for enqueueing elements.
//
// Producer provides non-blocking enqueue operations. The element is passed
// by pointer to avoid copying large structs. The backend stores a copy of
// the pointed-to value, so the original can be modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue adds an element to the backend (non-blocking).
	// The element is copied into the backend's internal storage.
	// Returns nil on success, ErrWouldBlock if a bounded backend is full.
	Enqueue(elem *T) error
}

// Consumer is the interface for dequeueing elements.
//
// Consumer provides non-blocking dequeue operations. The element is returned
// by value (copied from the backend's internal storage). The original slot is
// cleared to allow garbage collection of referenced objects.
type Consumer[T any] interface {
	// Dequeue removes and returns an element from the backend (non-blocking).
	// Returns the dequeued element on success.
	// Returns (zero-value, ErrWouldBlock) if no element is available.
	Dequeue() (T, error)
}
