// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dynq

import (
	"fmt"
	"runtime"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Dequeue: no element is available right now (pending set empty)
// For Enqueue: a bounded custom backend is full (backpressure)
//
// ErrWouldBlock is a control flow signal, not a failure. During a run the
// sources absorb it internally; it surfaces only from [Queue.Dequeue] when
// draining leftovers and from [Queue.Enqueue] on a full bounded backend.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	for {
//	    elem, err := q.Dequeue()
//	    if dynq.IsWouldBlock(err) {
//	        break // Nothing left
//	    }
//	    fmt.Println(elem)
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// PanicError wraps a panic recovered from a task function.
//
// The parallel drivers capture a panicking task, cancel the run, and
// re-raise the panic as a *PanicError after all workers have joined.
// Stack holds the stack trace of the panicking goroutine at recovery time.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("dynq: task panic: %v", e.Value)
}

// Unwrap returns the panic value if it was an error, nil otherwise.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// newPanicError captures v with the current goroutine's stack.
func newPanicError(v any) *PanicError {
	buf := make([]byte, 8<<10)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: v, Stack: buf[:n]}
}
