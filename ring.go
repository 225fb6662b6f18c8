// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import "sync"

// ringMinCap is the slot count of the first allocation.
const ringMinCap = 8

// Ring is a mutex-guarded growable ring buffer backend.
//
// Ring is the simple reference backend: every operation takes one lock,
// which makes it fully visible to the race detector and lets it report an
// exact length. Capacity doubles on demand; Enqueue never fails.
//
// In FIFO mode Dequeue returns the oldest element first (breadth-first
// bias). In LIFO mode it returns the newest first (depth-first bias),
// which keeps the pending set small on deep self-feeding workloads.
//
// Ring is safe for any number of concurrent producers and consumers.
type Ring[T any] struct {
	mu   sync.Mutex
	buf  []T // len(buf) is a power of 2
	head int
	size int
	lifo bool
}

// NewRing creates an empty FIFO ring backend.
func NewRing[T any]() *Ring[T] {
	return &Ring[T]{}
}

// NewRingLIFO creates an empty LIFO ring backend.
// Dequeue returns the most recently enqueued element first.
func NewRingLIFO[T any]() *Ring[T] {
	return &Ring[T]{lifo: true}
}

// Enqueue adds an element to the ring, growing it when full.
// Always returns nil.
func (r *Ring[T]) Enqueue(elem *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == len(r.buf) {
		r.grow()
	}
	r.buf[(r.head+r.size)&(len(r.buf)-1)] = *elem
	r.size++
	return nil
}

// Dequeue removes and returns an element from the ring.
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (r *Ring[T]) Dequeue() (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.size == 0 {
		return zero, ErrWouldBlock
	}

	mask := len(r.buf) - 1
	var i int
	if r.lifo {
		i = (r.head + r.size - 1) & mask
	} else {
		i = r.head
		r.head = (r.head + 1) & mask
	}
	elem := r.buf[i]
	r.buf[i] = zero
	r.size--
	return elem, nil
}

// Len returns the exact number of pending elements.
// Exact counts are affordable here since every operation holds the lock.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// grow doubles the buffer and normalizes head to 0. Caller holds mu.
func (r *Ring[T]) grow() {
	next := make([]T, max(2*len(r.buf), ringMinCap))
	mask := len(r.buf) - 1
	for i := range r.size {
		next[i] = r.buf[(r.head+i)&mask]
	}
	r.buf = next
	r.head = 0
}
