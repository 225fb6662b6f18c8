// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import (
	"context"
	"iter"
	"runtime"
	"sync"
)

// Task processes one claimed element. Enqueue on h feeds the same run.
type Task[T any] func(ctx context.Context, h Handle[T], elem *T) error

// ForEach drains the queue with parallel workers until the run completes.
//
// The worker count comes from [Builder.Workers], defaulting to
// runtime.GOMAXPROCS(0). Worker goroutines pull elements through split
// sources of one run; fn may enqueue further elements through its handle,
// and ForEach returns only when the pending set is empty and every task
// has finished. With no handle enqueues this is a plain parallel
// iteration over the seeds.
//
// The handle is released automatically when fn returns or panics. The
// first error cancels the run: in-progress tasks finish, claims obtained
// after cancellation are handed back to the queue unprocessed, and the
// error is returned after all workers joined. Unprocessed elements stay
// in the queue and can be inspected with [Queue.Dequeue]. A task panic
// is re-raised as a [*PanicError] after the join. If ctx is cancelled
// first, ForEach returns ctx's error.
//
// Multiple drivers may drain the same queue concurrently; they jointly
// observe the same completion.
func (q *Queue[T]) ForEach(ctx context.Context, fn Task[T]) error {
	_, err := Reduce(ctx, q,
		func() struct{} { return struct{}{} },
		func(ctx context.Context, h Handle[T], elem *T, _ struct{}) (struct{}, error) {
			return struct{}{}, fn(ctx, h, elem)
		},
		func(a, _ struct{}) struct{} { return a },
	)
	return err
}

// Collect drains the queue with parallel workers and gathers one result
// per element. Order is arbitrary. On error the partial results are
// discarded and the first error is returned; cancellation and panics
// behave as in [Queue.ForEach].
func Collect[T, R any](ctx context.Context, q *Queue[T], fn func(ctx context.Context, h Handle[T], elem *T) (R, error)) ([]R, error) {
	return Reduce(ctx, q,
		func() []R { return nil },
		func(ctx context.Context, h Handle[T], elem *T, acc []R) ([]R, error) {
			r, err := fn(ctx, h, elem)
			if err != nil {
				return acc, err
			}
			return append(acc, r), nil
		},
		func(a, b []R) []R { return append(a, b...) },
	)
}

// Reduce drains the queue with parallel workers, folding elements into
// per-worker accumulators that are merged after the join.
//
// Each worker starts from identity() and folds every element it claims
// with fn; merge combines the worker accumulators pairwise in worker
// order. merge must be associative and treat identity() as neutral, and
// fn must tolerate arbitrary element-to-worker assignment. Errors,
// cancellation and panics behave as in [Queue.ForEach]; on error the
// accumulators are discarded and the zero R is returned.
func Reduce[T, R any](ctx context.Context, q *Queue[T], identity func() R, fn func(ctx context.Context, h Handle[T], elem *T, acc R) (R, error), merge func(a, b R) R) (R, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srcs := sources(q, q.workers)
	accs := make([]R, len(srcs))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for i, src := range srcs {
		wg.Add(1)
		go func(i int, src *Source[T]) {
			defer wg.Done()
			acc := identity()
			for ctx.Err() == nil {
				h, elem, ok := src.Next()
				if !ok {
					break
				}
				if ctx.Err() != nil {
					// Claimed while the run was being cancelled: hand the
					// element back instead of running its task.
					h.Enqueue(&elem)
					h.Release()
					break
				}
				next, err := reduceStep(ctx, fn, h, &elem, acc)
				acc = next
				if err != nil {
					record(err)
					break
				}
			}
			accs[i] = acc
		}(i, src)
	}
	wg.Wait()

	if pe, ok := firstErr.(*PanicError); ok {
		panic(pe)
	}
	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		var zero R
		return zero, firstErr
	}

	out := accs[0]
	for _, acc := range accs[1:] {
		out = merge(out, acc)
	}
	return out, nil
}

// All returns a single-threaded iterator over the run.
//
// The loop body is the processing step: the handle is valid for the body
// of one iteration and released when the body returns, so elements
// enqueued through it extend the iteration. Breaking out of the loop
// leaves the remaining elements pending.
//
// Example:
//
//	for h, elem := range q.All() {
//	    if elem.HasChildren() {
//	        h.Enqueue(&child)
//	    }
//	    visit(elem)
//	}
func (q *Queue[T]) All() iter.Seq2[Handle[T], T] {
	return func(yield func(Handle[T], T) bool) {
		src := q.Source()
		for {
			h, elem, ok := src.Next()
			if !ok {
				return
			}
			ok = func() bool {
				defer h.Release()
				return yield(h, elem)
			}()
			if !ok {
				return
			}
		}
	}
}

// sources builds the worker sources for one run: the root plus up to
// workers-1 splits. Splitting stops early on an empty idle queue.
func sources[T any](q *Queue[T], workers int) []*Source[T] {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	root := q.Source()
	srcs := make([]*Source[T], 1, workers)
	srcs[0] = root
	for len(srcs) < workers {
		s := root.Split()
		if s == nil {
			break
		}
		srcs = append(srcs, s)
	}
	return srcs
}

// reduceStep runs one fold step with the claim released on every exit,
// converting a panic into the run's failure value.
func reduceStep[T, R any](ctx context.Context, fn func(ctx context.Context, h Handle[T], elem *T, acc R) (R, error), h Handle[T], elem *T, acc R) (out R, err error) {
	defer h.Release()
	defer func() {
		if r := recover(); r != nil {
			out = acc
			err = newPanicError(r)
		}
	}()
	return fn(ctx, h, elem, acc)
}
