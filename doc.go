// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dynq provides a dynamically growable work queue for parallel
// traversal.
//
// A dynq queue is drained by a pool of workers while the work itself is
// allowed to grow: the task processing an element receives a [Handle] and
// may enqueue further elements into the same run. The run completes when
// the pending set is empty and no task is still in flight. This turns
// recursive workloads (crawling, graph walks, directory scans, dependency
// resolution) into flat queue consumption without a separate frontier per
// level.
//
// # Quick Start
//
// Seed a queue, then drain it with parallel workers:
//
//	q := dynq.From(dynq.New(), []int{1, 2, 3})
//
//	err := q.ForEach(ctx, func(ctx context.Context, h dynq.Handle[int], v *int) error {
//	    if *v == 2 {
//	        next := 4
//	        h.Enqueue(&next) // Grows the same run
//	    }
//	    return visit(*v)
//	})
//
// Every seeded and enqueued element is processed exactly once. Visitation
// order is unspecified; treat the result as a multiset.
//
// Builder API selects the backend and worker count:
//
//	q := dynq.Build[Job](dynq.New())                      // → lock-free segmented backend
//	q := dynq.Build[Job](dynq.New().Locked())             // → mutex ring backend
//	q := dynq.Build[Job](dynq.New().LIFO())               // → mutex ring, depth-first bias
//	q := dynq.Build[Job](dynq.New().Workers(4))           // → 4 driver goroutines
//	q := dynq.Wrap[Job](dynq.New(), myBackend)            // → caller-supplied storage
//
// # Dynamic Growth
//
// The handle passed to a task is the only way to enqueue into a live run.
// Elements pushed through it are visible to the run's completion
// accounting before the task's claim is released, so the run cannot be
// declared complete between a push and the task's return:
//
//	func crawl(ctx context.Context, h dynq.Handle[Page], p *Page) error {
//	    for _, link := range p.Links {
//	        h.Enqueue(&link)
//	    }
//	    return store(ctx, p)
//	}
//
// A handle is valid for the duration of its task. The drivers release it
// automatically when the task returns or panics; using a retained handle
// afterwards panics. Seeding before a run uses [Queue.Enqueue] or
// [Queue.Seed] instead, which need no handle.
//
// # Completion
//
// Workers pull elements through [Source] values that share one pending
// set. An empty pop alone never ends a run, because an in-flight task may
// still grow it. A source reports completion only after it observes, in
// order:
//
//  1. a pop that finds the pending set empty
//  2. an in-flight count of zero
//  3. a confirming pop that is still empty
//
// The zero observation orders the confirming pop after every released
// claim, so the confirming pop sees every element pushed by finished
// tasks. While the in-flight count is nonzero the source retries with
// adaptive backoff instead of blocking. Completion is terminal per
// source; a finite workload (no task enqueues forever) always reaches it.
//
// # Backends
//
// Pending elements live in a pluggable [Backend]:
//
//	Ring  - mutex-guarded growable ring buffer; FIFO or LIFO; exact Len;
//	        fully visible to the race detector
//	Seg   - lock-free segmented queue; FIFO-leaning; scales with
//	        concurrent workers (default)
//
// Both are unbounded: Enqueue never fails. A caller-supplied backend only
// needs the two-method shape
//
//	Enqueue(elem *T) error
//	Dequeue() (T, error)
//
// with Dequeue returning [ErrWouldBlock] when empty, which is the
// producer/consumer contract of the bounded hybscloud queues. Plug one in
// with [Wrap]. A bounded backend can reject a push: during seeding the
// error is returned, during a run the push panics, since silently
// dropping an element would corrupt the traversal.
//
// # Parallel Drivers
//
// [Queue.ForEach] runs one task per element. [Collect] gathers one result
// per element in arbitrary order. [Reduce] folds elements into per-worker
// accumulators and merges them after the join:
//
//	total, err := dynq.Reduce(ctx, q,
//	    func() int { return 0 },
//	    func(ctx context.Context, h dynq.Handle[int], v *int, acc int) (int, error) {
//	        return acc + *v, nil
//	    },
//	    func(a, b int) int { return a + b },
//	)
//
// The first task error cancels the run: workers stop claiming, the error
// is returned after the join, and unprocessed elements remain in the
// queue for inspection with [Queue.Dequeue]. A task panic is captured
// with its stack and re-raised as a [*PanicError] after the join.
// Cancelling ctx stops the run the same way and surfaces ctx's error.
//
// [Queue.All] is the single-threaded bridge, a range-over-func iterator
// with the same growth semantics:
//
//	for h, v := range q.All() {
//	    if v%2 == 0 {
//	        next := v + 1
//	        h.Enqueue(&next)
//	    }
//	}
//
// # Manual Pull Loops
//
// The drivers cover common shapes; custom schedulers drive sources
// directly. [Queue.Source] returns the root source and [Source.Split]
// adds workers; Split shares the run rather than partitioning it, and
// refuses (returns nil) only when the run is empty with nothing in
// flight:
//
//	src := q.Source()
//	go worker(src.Split()) // Second worker, same run
//	for {
//	    h, elem, ok := src.Next()
//	    if !ok {
//	        break
//	    }
//	    process(h, elem)
//	    h.Release()
//	}
//
// Each source must be driven by one goroutine. Forgetting Release leaves
// the run permanently in flight and Next never reports completion.
//
// # Error Handling
//
// Control flow signalling uses [ErrWouldBlock], sourced from
// [code.hybscloud.com/iox] for ecosystem consistency. It surfaces from
// [Queue.Dequeue] when draining leftovers and from [Queue.Enqueue] on a
// full bounded backend; the sources absorb it internally:
//
//	for {
//	    elem, err := q.Dequeue()
//	    if dynq.IsWouldBlock(err) {
//	        break
//	    }
//	    log.Printf("unprocessed: %v", elem)
//	}
//
// For semantic error classification (delegates to iox):
//
//	dynq.IsWouldBlock(err)  // true if nothing pending / backend full
//	dynq.IsSemantic(err)    // true if control flow signal
//	dynq.IsNonFailure(err)  // true if nil, ErrWouldBlock, or ErrMore
//
// API misuse (invalid builder knobs, stale handles, nil backends) panics.
//
// # Statistics
//
// [Queue.Stats] snapshots the run counters (pushed, pulled, released,
// in-flight, splits) and [Queue.Len] derives the advisory pending count.
// The backends themselves do not count elements; accurate counts in
// lock-free algorithms require expensive cross-core synchronization, so
// counting lives in the run state where relaxed counters suffice. After
// a completed run, Pushed == Pulled == Released and InFlight == 0.
//
// # Thread Safety
//
// [Queue], [Handle], [Ring] and [Seg] methods are safe for concurrent
// use. A [Source] is owned by one goroutine except Split. Handles may
// cross goroutines but their release detection is best-effort; the
// supported pattern is to use a handle only inside its task.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm
// verification. It tracks explicit synchronization primitives (mutex,
// channels, WaitGroup) but cannot observe happens-before relationships
// established through atomic memory orderings (acquire-release
// semantics). Both the Seg backend's slot protocol and the run counters
// use such orderings, so concurrent workers look unsynchronized to the
// detector and trigger false positives; the algorithms are correct, the
// detector simply cannot track them.
//
// Single-goroutine runs (Workers(1), [Queue.All], manual loops) are
// fully detector-clean with either backend. Concurrent behavior is
// verified by stress tests without the detector; tests incompatible with
// race detection check [RaceEnabled] and skip.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// adaptive backoff, [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering, and [code.hybscloud.com/spin] for CPU
// pause instructions.
package dynq
