// Package kernelevent implements a manual-reset event, the Go rendition
// of the Win32 kernel event the join barrier escalates to when its spin
// budget is exhausted.
package kernelevent

import "sync"

// Event is a manual-reset event: once Set, every blocked and future
// waiter unblocks until Reset is called.
type Event struct {
	mu       sync.Mutex
	cond     *sync.Cond
	signaled bool
}

// New returns an Event that starts in the reset (unsignaled) state.
func New() *Event {
	e := &Event{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// BlockUntilSet suspends the calling goroutine until the event is
// signaled.
func (e *Event) BlockUntilSet() {
	e.mu.Lock()
	for !e.signaled {
		e.cond.Wait()
	}
	e.mu.Unlock()
}

// Set wakes every blocked waiter.
func (e *Event) Set() {
	e.mu.Lock()
	e.signaled = true
	e.mu.Unlock()
	e.cond.Broadcast()
}

// Reset clears the signaled state.
func (e *Event) Reset() {
	e.mu.Lock()
	e.signaled = false
	e.mu.Unlock()
}
