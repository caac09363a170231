package js

import (
	"sync"

	"github.com/dop251/goja"
)

// task represents a queued callback.
type task struct {
	callback goja.Callable
	args     []goja.Value
}

// eventLoop manages the microtask queue. Element lifecycle and event
// dispatch in this library are synchronous; the queue exists for
// queueMicrotask and for hosts that defer work between dispatches.
type eventLoop struct {
	microtasks []task
	mu         sync.Mutex
}

// newEventLoop creates a new event loop.
func newEventLoop() *eventLoop {
	return &eventLoop{
		microtasks: make([]task, 0),
	}
}

// queueMicrotask adds a microtask to the queue.
func (el *eventLoop) queueMicrotask(callback goja.Callable, args []goja.Value) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.microtasks = append(el.microtasks, task{callback: callback, args: args})
}

// drain executes microtasks until the queue is empty, including tasks
// queued by the tasks themselves.
func (el *eventLoop) drain() {
	for {
		el.mu.Lock()
		if len(el.microtasks) == 0 {
			el.mu.Unlock()
			return
		}
		t := el.microtasks[0]
		el.microtasks = el.microtasks[1:]
		el.mu.Unlock()

		_, _ = t.callback(goja.Undefined(), t.args...)
	}
}

// hasPending returns true if there are any pending tasks.
func (el *eventLoop) hasPending() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return len(el.microtasks) > 0
}

// clear removes all pending tasks.
func (el *eventLoop) clear() {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.microtasks = el.microtasks[:0]
}
