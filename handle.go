// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import "code.hybscloud.com/atomix"

// ticket tracks the discharge of one claimed element.
// The gate guarantees exactly one in-flight decrement per claim.
type ticket struct {
	gate atomix.Uint64 // 0 = armed, 1 = discharged
}

// Handle grants enqueue rights into a live run for one processing step.
//
// Every element claimed by a [Source] comes with a Handle. The task may
// call Enqueue any number of times while it runs; once the claim is
// released the handle is dead, and further Enqueue calls panic. The
// parallel drivers and [Queue.All] release automatically when the task
// returns or panics; manual [Source.Next] loops must call Release
// themselves, or the run never completes.
//
// A Handle is a small value and may be copied freely; all copies share
// the same claim. The zero Handle is not valid.
type Handle[T any] struct {
	q  *Queue[T]
	tk *ticket
}

// Enqueue adds an element to the run this handle was claimed from.
// The element is copied; the original can be modified after return.
//
// The new element becomes visible to the run's completion accounting
// before the claim is released, so a run cannot be declared complete
// between a task's Enqueue and its return.
//
// Panics if the handle was already released (the claim's task returned),
// or if a bounded backend from [Wrap] rejects the push. Release detection
// is best-effort: a stale handle racing the releasing goroutine may slip
// through the check.
func (h Handle[T]) Enqueue(elem *T) {
	if h.tk == nil {
		panic("dynq: zero handle")
	}
	if h.tk.gate.LoadAcquire() != 0 {
		panic("dynq: handle used after release")
	}
	h.q.push(elem)
}

// Release discharges the handle's claim.
//
// Safe to call more than once; only the first call decrements the
// in-flight count. After Release the handle must not be used to enqueue.
func (h Handle[T]) Release() {
	if h.tk == nil {
		panic("dynq: zero handle")
	}
	if !h.tk.gate.CompareAndSwapAcqRel(0, 1) {
		return
	}
	h.q.released.Add(1)
	h.q.inflight.AddAcqRel(-1)
}
