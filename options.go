// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import (
	"iter"
	"unsafe"
)

// Options configures queue creation and backend selection.
type Options struct {
	// Backend constraints (determines backend type)
	locked bool
	lifo   bool

	// Segment slot count for the lock-free backend (rounds up to power of 2)
	segSize int

	// Worker goroutines for the parallel drivers (0 = GOMAXPROCS at run time)
	workers int
}

// Builder creates queues with fluent configuration.
//
// Builder provides a fluent API for configuring and creating queues.
// The builder selects the backend based on the Locked and LIFO constraints
// and passes the worker count through to the parallel drivers.
//
// Example:
//
//	// Lock-free segmented backend (default, general purpose)
//	q := dynq.Build[Job](dynq.New())
//
//	// Mutex-guarded backend, race-detector friendly
//	q := dynq.Build[Job](dynq.New().Locked())
//
//	// Depth-first bias with a fixed worker count
//	q := dynq.From(dynq.New().LIFO().Workers(4), jobs)
type Builder struct {
	opts Options
}

// New creates a queue builder with default configuration: the lock-free
// segmented backend in FIFO bias, with one driver worker per processor.
//
// Example:
//
//	// Create builder, then configure and build
//	b := dynq.New()
//	q := dynq.Build[int](b.Locked().Workers(8))
//
//	// Or chain directly
//	q := dynq.Build[int](dynq.New())
func New() *Builder {
	return &Builder{opts: Options{segSize: defaultSegSize}}
}

// Locked selects the mutex-guarded growable ring backend instead of the
// lock-free segmented backend. The locked backend trades hot-path
// scalability for exact counts and full race-detector visibility.
func (b *Builder) Locked() *Builder {
	b.opts.locked = true
	return b
}

// LIFO makes dequeue return the newest pending element first, biasing the
// traversal depth-first so the pending set stays small on deep workloads.
//
// LIFO implies the locked ring backend; the segmented backend is FIFO only.
func (b *Builder) LIFO() *Builder {
	b.opts.lifo = true
	return b
}

// Workers sets the goroutine count used by the parallel drivers.
// The default (unset) is runtime.GOMAXPROCS(0) at run time.
//
// Panics if n < 1.
func (b *Builder) Workers(n int) *Builder {
	if n < 1 {
		panic("dynq: workers must be >= 1")
	}
	b.opts.workers = n
	return b
}

// SegSize sets the slot count per segment for the lock-free backend.
// Rounds up to the next power of 2. Ignored by the locked backend.
//
// Panics if n < 2.
func (b *Builder) SegSize(n int) *Builder {
	if n < 2 {
		panic("dynq: segment size must be >= 2")
	}
	b.opts.segSize = n
	return b
}

// Build creates an empty Queue[T] with automatic backend selection.
//
// Backend selection:
//
//	Locked() or LIFO()  → Ring (mutex-guarded growable ring buffer)
//	Neither             → Seg (lock-free segmented queue)
//
// Seed elements with [Queue.Enqueue] or [Queue.Seed] before starting a run,
// or use [From] / [FromSeq] to build and seed in one step.
func Build[T any](b *Builder) *Queue[T] {
	var be Backend[T]
	switch {
	case b.opts.lifo:
		be = NewRingLIFO[T]()
	case b.opts.locked:
		be = NewRing[T]()
	default:
		be = NewSeg[T](b.opts.segSize)
	}
	return &Queue[T]{backend: be, workers: b.opts.workers}
}

// From creates a Queue[T] seeded with a copy of every element of items.
// The slice itself is not retained; mutating it afterwards does not
// affect the queue.
//
// Example:
//
//	q := dynq.From(dynq.New(), []string{"a", "b", "c"})
func From[T any](b *Builder, items []T) *Queue[T] {
	q := Build[T](b)
	for i := range items {
		q.push(&items[i])
	}
	return q
}

// FromSeq creates a Queue[T] seeded with every element produced by seq.
// The sequence is consumed once, before From returns.
//
// Example:
//
//	q := dynq.FromSeq(dynq.New(), maps.Keys(index))
func FromSeq[T any](b *Builder, seq iter.Seq[T]) *Queue[T] {
	q := Build[T](b)
	for v := range seq {
		q.push(&v)
	}
	return q
}

// Wrap creates a Queue[T] over a caller-supplied backend. The builder's
// backend constraints (Locked, LIFO, SegSize) are ignored; Workers applies.
//
// A bounded backend may reject pushes with ErrWouldBlock: seeding via
// [Queue.Enqueue] reports the error, while a rejected [Handle.Enqueue]
// during a run panics, since dropping the element would corrupt the
// traversal.
//
// The backend may already hold elements; a run traverses them like any
// others. Such elements bypass the queue's counters, so [Queue.Len] and
// [Stats] cover only queue-mediated traffic, and [Source.Split] on a
// wrapped queue always grants rather than guess at backend contents.
//
// Panics if be is nil.
func Wrap[T any](b *Builder, be Backend[T]) *Queue[T] {
	if be == nil {
		panic("dynq: nil backend")
	}
	return &Queue[T]{backend: be, workers: b.opts.workers, wrapped: true}
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte

// padPtr is padding to fill cache line after pointer-sized field.
type padPtr [64 - ptrSize]byte
